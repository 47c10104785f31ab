package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"busly/internal/bookings/attach"
	"busly/internal/bookings/availability"
	bookingserrors "busly/internal/bookings/errors"
	"busly/internal/bookings/repository"
	"busly/internal/bookings/session"
	"busly/internal/bookings/validator"
	"busly/pkg/config"
	apperrors "busly/pkg/errors"
	"busly/pkg/events"
	"busly/pkg/model"
	"busly/pkg/sanitizer"

	"github.com/google/uuid"
)

type BookingService interface {
	Buses() []string
	BoardingPoints() []string
	BookedSeats(ctx context.Context, bus string) ([]int, error)
	Commit(ctx context.Context, sel *session.Selection, rider *model.RiderDetails, attachment *model.Attachment) (*model.CommitResult, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.BookingRecord, int64, error)
	ExportAll(ctx context.Context) ([]*model.BookingRecord, error)
	ExportCSV(ctx context.Context, w io.Writer) error
}

type bookingService struct {
	store       repository.RecordStore
	lockRepo    repository.BusLockRepository
	index       *availability.Index
	attachments *attach.Store
	validator   *validator.RiderValidator
	publisher   events.Publisher
	cfg         *config.Config
}

// NewBookingService wires the commit engine. publisher may be nil when
// eventing is disabled.
func NewBookingService(
	store repository.RecordStore,
	lockRepo repository.BusLockRepository,
	attachments *attach.Store,
	riderValidator *validator.RiderValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		store:       store,
		lockRepo:    lockRepo,
		index:       availability.NewIndex(store),
		attachments: attachments,
		validator:   riderValidator,
		publisher:   publisher,
		cfg:         cfg,
	}
}

func (s *bookingService) Buses() []string {
	return s.cfg.Buses
}

func (s *bookingService) BoardingPoints() []string {
	return s.cfg.BoardingPoints
}

func (s *bookingService) BookedSeats(ctx context.Context, bus string) ([]int, error) {
	if !slices.Contains(s.cfg.Buses, bus) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Unknown bus: %s", bus))
	}

	booked, err := s.index.BookedSeats(ctx, bus)
	if err != nil {
		s.cfg.Log.Error("Failed to read seat availability", "bus", bus, "error", err)
		return nil, apperrors.Storage("Failed to read seat availability", err)
	}

	seats := make([]int, 0, len(booked))
	for seat := range booked {
		seats = append(seats, seat)
	}
	slices.Sort(seats)
	return seats, nil
}

// Commit converts a selection into persisted booking records. It is an
// optimistic check-then-write: rider details and seat count are validated
// first, then availability is re-read fresh under the bus lock so a seat
// grabbed between selection and submit surfaces as a SeatConflict instead
// of a double booking. The lock spans re-check through append.
func (s *bookingService) Commit(ctx context.Context, sel *session.Selection, rider *model.RiderDetails, attachment *model.Attachment) (*model.CommitResult, error) {
	snap := sel.Snapshot()

	if !slices.Contains(s.cfg.Buses, snap.Bus) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Unknown bus: %s", snap.Bus))
	}

	s.sanitize(rider)
	if err := s.validator.Validate(rider); err != nil {
		s.cfg.Log.Warn("Rider validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	if len(snap.ChosenSeats) != snap.RequestedCount {
		return nil, apperrors.Validation("Selected seat count does not match the requested count", map[string]any{
			"chosen":    len(snap.ChosenSeats),
			"requested": snap.RequestedCount,
		})
	}

	// The shell validates toggles, but the engine cannot trust its callers
	// with the seat range.
	for _, seat := range snap.ChosenSeats {
		if seat < 1 || seat > model.SeatCapacity {
			return nil, apperrors.InvalidInput(fmt.Sprintf("Seat number must be between 1 and %d", model.SeatCapacity))
		}
	}

	// Serialize commits per bus so the availability re-check below cannot be
	// invalidated by a concurrent append.
	lockID, err := s.lockRepo.Acquire(ctx, snap.Bus)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrLockHeld) {
			return nil, apperrors.Conflict("This bus is currently being booked by another request. Please try again.")
		}
		return nil, apperrors.Internal("Failed to acquire bus lock", err)
	}
	defer func() {
		if releaseErr := s.lockRepo.Release(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release bus lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	// Fresh read, never the snapshot the user selected against.
	bookedNow, err := s.index.BookedSeats(ctx, snap.Bus)
	if err != nil {
		return nil, apperrors.Storage("Failed to read seat availability", err)
	}

	if clash := intersect(snap.ChosenSeats, bookedNow); len(clash) > 0 {
		s.cfg.Log.Info("Seat conflict detected at commit",
			"bus", snap.Bus,
			"seats", clash,
		)
		return nil, apperrors.SeatConflict(clash)
	}

	bookingID := uuid.NewString()
	createdAt := time.Now().UTC().Truncate(time.Millisecond)

	// The attachment lands before the records so a committed record can
	// never reference a missing file. If the append below fails, the
	// orphaned file is acceptable collateral.
	attachmentRef := ""
	if attachment != nil && len(attachment.Data) > 0 {
		attachmentRef, err = s.attachments.Save(bookingID, attachment.Data, attachment.Extension)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrBadExtension) {
				return nil, apperrors.InvalidInput("Attachment must be a jpg, jpeg or png image")
			}
			s.cfg.Log.Error("Failed to store attachment", "booking_id", bookingID, "error", err)
			return nil, apperrors.Storage("Failed to store attachment", err)
		}
	}

	records := make([]*model.BookingRecord, 0, len(snap.ChosenSeats))
	for _, seat := range snap.ChosenSeats {
		records = append(records, &model.BookingRecord{
			BookingID:     bookingID,
			Bus:           snap.Bus,
			Seat:          seat,
			RiderName:     rider.Name,
			RiderMobile:   rider.Mobile,
			BoardingPoint: rider.BoardingPoint,
			PaymentTime:   rider.PaymentTime,
			AttachmentRef: attachmentRef,
			CreatedAt:     createdAt,
		})
	}

	if err := s.store.Append(ctx, records); err != nil {
		if errors.Is(err, bookingserrors.ErrSeatTaken) {
			// The storage backstop caught a collision the lock did not; report
			// the contested seats from a fresh read.
			return nil, s.seatConflictFromStore(ctx, snap)
		}
		s.cfg.Log.Error("Failed to append booking records", "booking_id", bookingID, "error", err)
		return nil, apperrors.Storage("Failed to append booking records", err)
	}

	s.publishCommitted(ctx, bookingID, snap, rider, createdAt)

	s.cfg.Log.Info("Booking committed successfully",
		"booking_id", bookingID,
		"bus", snap.Bus,
		"seats", snap.ChosenSeats,
		"attachment_ref", attachmentRef,
	)

	return &model.CommitResult{
		BookingID: bookingID,
		Bus:       snap.Bus,
		Seats:     snap.ChosenSeats,
	}, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.BookingRecord, int64, error) {
	records, err := s.store.Scan(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list booking records", "error", err)
		return nil, 0, apperrors.Storage("Failed to retrieve booking records", err)
	}

	total := int64(len(records))
	if offset >= total {
		return []*model.BookingRecord{}, total, nil
	}

	end := offset + int64(limit)
	if end > total {
		end = total
	}
	return records[offset:end], total, nil
}

func (s *bookingService) ExportAll(ctx context.Context) ([]*model.BookingRecord, error) {
	records, err := s.store.Scan(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to export booking records", "error", err)
		return nil, apperrors.Storage("Failed to export booking records", err)
	}
	return records, nil
}

// ExportCSV streams the full table in the record-store column schema,
// header row included, regardless of which backend holds the records.
func (s *bookingService) ExportCSV(ctx context.Context, w io.Writer) error {
	records, err := s.ExportAll(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(model.CSVHeader); err != nil {
		return apperrors.Storage("Failed to write export header", err)
	}
	for _, record := range records {
		if err := writer.Write(record.CSVRow()); err != nil {
			return apperrors.Storage("Failed to write export row", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.Storage("Failed to flush export", err)
	}
	return nil
}

// --- Helpers ---

func (s *bookingService) sanitize(rider *model.RiderDetails) {
	rider.Name = sanitizer.NormalizeName(rider.Name)
	rider.Mobile = sanitizer.NormalizeMobile(rider.Mobile)
	rider.BoardingPoint = sanitizer.TrimAndNormalize(rider.BoardingPoint)
	rider.PaymentTime = sanitizer.NormalizePaymentTime(rider.PaymentTime)
}

func (s *bookingService) seatConflictFromStore(ctx context.Context, snap session.Snapshot) error {
	bookedNow, err := s.index.BookedSeats(ctx, snap.Bus)
	if err != nil {
		return apperrors.Conflict("Some of the selected seats were just booked by someone else")
	}
	clash := intersect(snap.ChosenSeats, bookedNow)
	if len(clash) == 0 {
		return apperrors.Conflict("Some of the selected seats were just booked by someone else")
	}
	return apperrors.SeatConflict(clash)
}

func (s *bookingService) publishCommitted(ctx context.Context, bookingID string, snap session.Snapshot, rider *model.RiderDetails, createdAt time.Time) {
	if s.publisher == nil {
		return
	}

	err := s.publisher.PublishBookingCommitted(ctx, events.BookingCommitted{
		BookingID:     bookingID,
		Bus:           snap.Bus,
		Seats:         snap.ChosenSeats,
		BoardingPoint: rider.BoardingPoint,
		CreatedAt:     createdAt,
	})
	if err != nil {
		// Best effort: the record store already holds the truth.
		s.cfg.Log.Warn("Failed to publish booking.committed event",
			"booking_id", bookingID,
			"error", err,
		)
	}
}

func intersect(chosen []int, booked map[int]struct{}) []int {
	var clash []int
	for _, seat := range chosen {
		if _, taken := booked[seat]; taken {
			clash = append(clash, seat)
		}
	}
	slices.Sort(clash)
	return clash
}
