package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"slices"

	"busly/internal/bookings/service"
	"busly/internal/bookings/session"
	apperrors "busly/pkg/errors"
	httputil "busly/pkg/http"
	"busly/pkg/logger"
	"busly/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// multipartMemoryLimit is how much of a commit upload is held in memory
// before spilling to disk. The middleware stack caps total body size.
const multipartMemoryLimit = 4 << 20

type BookingHandler struct {
	service  service.BookingService
	sessions *session.Manager
	log      *logger.Logger
}

func NewBookingHandler(service service.BookingService, sessions *session.Manager, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service:  service,
		sessions: sessions,
		log:      log,
	}
}

func (h *BookingHandler) ListBuses(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	data := map[string]any{
		"buses":           h.service.Buses(),
		"boarding_points": h.service.BoardingPoints(),
		"seat_capacity":   model.SeatCapacity,
	}
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", "ListBuses", "error", err)
	}
}

func (h *BookingHandler) BookedSeats(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bus := ps.ByName("bus")

	seats, err := h.service.BookedSeats(r.Context(), bus)
	if err != nil {
		h.writeError(w, "BookedSeats", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"bus": bus, "booked": seats}); err != nil {
		h.log.Error("failed to write success response", "handler", "BookedSeats", "error", err)
	}
}

func (h *BookingHandler) GetSelection(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sel := h.sessions.GetOrCreate(ps.ByName("sid"))

	if err := httputil.WriteSuccess(w, sel.Snapshot()); err != nil {
		h.log.Error("failed to write success response", "handler", "GetSelection", "error", err)
	}
}

func (h *BookingHandler) ResetSelection(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sel := h.sessions.GetOrCreate(ps.ByName("sid"))
	sel.Clear()
	httputil.WriteNoContent(w)
}

func (h *BookingHandler) SetBus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Bus string `json:"bus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, "SetBus", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if !slices.Contains(h.service.Buses(), body.Bus) {
		h.writeError(w, "SetBus", apperrors.InvalidInput("Unknown bus: "+body.Bus))
		return
	}

	sel := h.sessions.GetOrCreate(ps.ByName("sid"))
	sel.SetBus(body.Bus)

	if err := httputil.WriteSuccess(w, sel.Snapshot()); err != nil {
		h.log.Error("failed to write success response", "handler", "SetBus", "error", err)
	}
}

func (h *BookingHandler) SetRequestedCount(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, "SetRequestedCount", apperrors.InvalidInput("Invalid request body"))
		return
	}

	sel := h.sessions.GetOrCreate(ps.ByName("sid"))
	sel.SetRequestedCount(body.Count)

	if err := httputil.WriteSuccess(w, sel.Snapshot()); err != nil {
		h.log.Error("failed to write success response", "handler", "SetRequestedCount", "error", err)
	}
}

func (h *BookingHandler) ToggleSeat(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Seat int `json:"seat"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, "ToggleSeat", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if body.Seat < 1 || body.Seat > model.SeatCapacity {
		h.writeError(w, "ToggleSeat", apperrors.InvalidInput("Seat number must be between 1 and 49"))
		return
	}

	sel := h.sessions.GetOrCreate(ps.ByName("sid"))
	snap := sel.Snapshot()

	booked, err := h.service.BookedSeats(r.Context(), snap.Bus)
	if err != nil {
		h.writeError(w, "ToggleSeat", err)
		return
	}

	bookedSet := make(map[int]struct{}, len(booked))
	for _, seat := range booked {
		bookedSet[seat] = struct{}{}
	}
	sel.ToggleSeat(body.Seat, bookedSet)

	if err := httputil.WriteSuccess(w, sel.Snapshot()); err != nil {
		h.log.Error("failed to write success response", "handler", "ToggleSeat", "error", err)
	}
}

func (h *BookingHandler) Commit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		h.writeError(w, "Commit", apperrors.InvalidInput("Invalid multipart form"))
		return
	}

	rider := &model.RiderDetails{
		Name:          r.FormValue("name"),
		Mobile:        r.FormValue("mobile"),
		BoardingPoint: r.FormValue("boarding_point"),
		PaymentTime:   r.FormValue("payment_time"),
	}

	attachment, err := h.readAttachment(r)
	if err != nil {
		h.writeError(w, "Commit", err)
		return
	}

	sel := h.sessions.GetOrCreate(ps.ByName("sid"))

	result, err := h.service.Commit(r.Context(), sel, rider, attachment)
	if err != nil {
		h.writeError(w, "Commit", err)
		return
	}

	// The commit engine leaves clearing to the caller.
	sel.Clear()

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", "Commit", "error", err)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	records, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, records, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "error", err)
	}
}

func (h *BookingHandler) Export(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var buf bytes.Buffer
	if err := h.service.ExportCSV(r.Context(), &buf); err != nil {
		h.writeError(w, "Export", err)
		return
	}

	httputil.CSVHeaders(w, "bus_booking_records.csv")
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.log.Error("failed to write export body", "handler", "Export", "error", err)
	}
}

func (h *BookingHandler) readAttachment(r *http.Request) (*model.Attachment, error) {
	file, header, err := r.FormFile("screenshot")
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid screenshot upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperrors.InvalidInput("Failed to read screenshot upload")
	}

	return &model.Attachment{
		Data:      data,
		Extension: filepath.Ext(header.Filename),
	}, nil
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/buses", h.ListBuses)
	router.GET("/api/v1/buses/:bus/seats", h.BookedSeats)

	router.GET("/api/v1/sessions/:sid", h.GetSelection)
	router.DELETE("/api/v1/sessions/:sid", h.ResetSelection)
	router.PUT("/api/v1/sessions/:sid/bus", h.SetBus)
	router.PUT("/api/v1/sessions/:sid/count", h.SetRequestedCount)
	router.POST("/api/v1/sessions/:sid/seats/toggle", h.ToggleSeat)
	router.POST("/api/v1/sessions/:sid/commit", h.Commit)

	router.GET("/api/v1/bookings", h.GetAll)
	router.GET("/api/v1/bookings/export", h.Export)
}
