package model

import (
	"fmt"
	"strconv"
	"time"
)

// CSVHeader is the fixed column schema of the record-store file and of the
// admin export. Column order is part of the storage contract.
var CSVHeader = []string{
	"bookingId", "bus", "seat",
	"riderName", "riderMobile",
	"boardingPoint", "paymentTime",
	"attachmentRef", "createdAt",
}

// CSVRow serializes the record into the 9-column schema.
func (r *BookingRecord) CSVRow() []string {
	return []string{
		r.BookingID,
		r.Bus,
		strconv.Itoa(r.Seat),
		r.RiderName,
		r.RiderMobile,
		r.BoardingPoint,
		r.PaymentTime,
		r.AttachmentRef,
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// RecordFromCSVRow parses one stored row back into a BookingRecord.
func RecordFromCSVRow(row []string) (*BookingRecord, error) {
	if len(row) != len(CSVHeader) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(CSVHeader), len(row))
	}

	seat, err := strconv.Atoi(row[2])
	if err != nil {
		return nil, fmt.Errorf("invalid seat number %q: %w", row[2], err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, row[8])
	if err != nil {
		return nil, fmt.Errorf("invalid createdAt %q: %w", row[8], err)
	}

	return &BookingRecord{
		BookingID:     row[0],
		Bus:           row[1],
		Seat:          seat,
		RiderName:     row[3],
		RiderMobile:   row[4],
		BoardingPoint: row[5],
		PaymentTime:   row[6],
		AttachmentRef: row[7],
		CreatedAt:     createdAt,
	}, nil
}
