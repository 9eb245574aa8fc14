package config

const (
	// TopicIngestTask is the NSQ topic carrying repository ingestion tasks.
	TopicIngestTask = "ingest.task"

	// IngestChannel is the consumer channel for the in-process worker.
	IngestChannel = "libscribe"
)
