// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// SchedulePublishedEvent is published when an admin publishes a schedule
// batch. It carries enough information for downstream consumers (the
// notification service, analytics) to act without querying the primary
// database.
type SchedulePublishedEvent struct {
	BatchID         uint64   `json:"batch_id"`
	SemesterID      uint64   `json:"semester_id"`
	SemesterName    string   `json:"semester_name"`
	PublishedBy     uint64   `json:"published_by"`
	AssignedUserIDs []uint64 `json:"assigned_user_ids"`
	PublishedAt     string   `json:"published_at"`
}
