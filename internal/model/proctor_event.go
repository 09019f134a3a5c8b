package model

import (
	"time"

	"github.com/google/uuid"
)

// ViolationKind identifies the proctoring anomaly that was sustained past
// the violation window.
type ViolationKind string

const (
	ViolationNoFace    ViolationKind = "NO_FACE"
	ViolationMultiFace ViolationKind = "MULTIPLE_FACES"
)

// ProctorEvent is the audit record of a raised violation, persisted
// asynchronously by the violation worker.
type ProctorEvent struct {
	ID          int64         `json:"id"`
	ExamID      uuid.UUID     `json:"exam_id"`
	SessionID   uuid.UUID     `json:"session_id"`
	StudentName string        `json:"student_name"`
	Kind        ViolationKind `json:"kind"`
	FaceCount   int           `json:"face_count"`
	RecordedAt  time.Time     `json:"recorded_at"`
}
