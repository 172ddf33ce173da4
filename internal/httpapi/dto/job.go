package dto

import (
	"time"

	"basegraph.app/helixask/internal/domain"
)

// JobCreatedResponse is the 202 body POST /ask/jobs returns.
type JobCreatedResponse struct {
	JobID     string `json:"jobId"`
	Status    string `json:"status"`
	SessionID string `json:"sessionId,omitempty"`
	TraceID   string `json:"traceId,omitempty"`
}

func ToJobCreatedResponse(job domain.JobRecord) JobCreatedResponse {
	return JobCreatedResponse{
		JobID:     job.ID,
		Status:    string(job.Status),
		SessionID: job.SessionID,
		TraceID:   job.TraceID,
	}
}

// JobResponse is the GET /ask/jobs/:jobId body.
type JobResponse struct {
	JobID       string       `json:"jobId"`
	Status      string       `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	SessionID   string       `json:"sessionId,omitempty"`
	TraceID     string       `json:"traceId,omitempty"`
	PartialText string       `json:"partialText,omitempty"`
	Error       string       `json:"error,omitempty"`
	Result      *EnvelopeDTO `json:"result,omitempty"`
}

func ToJobResponse(job domain.JobRecord) JobResponse {
	resp := JobResponse{
		JobID:       job.ID,
		Status:      string(job.Status),
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
		ExpiresAt:   job.ExpiresAt,
		SessionID:   job.SessionID,
		TraceID:     job.TraceID,
		PartialText: job.PartialText,
		Error:       job.Error,
	}
	if job.Result != nil {
		env := ToEnvelopeDTO(*job.Result)
		resp.Result = &env
	}
	return resp
}
