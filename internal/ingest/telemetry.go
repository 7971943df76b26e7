package ingest

// Telemetry constants for counters
const (
	// telemetryEventsAdmitted counts events accepted into the buffer
	telemetryEventsAdmitted = "liquidations.ingest.admitted"

	// telemetryEventsPersisted counts events written to the store
	telemetryEventsPersisted = "liquidations.ingest.persisted"

	// telemetryEventsDroppedOverflow counts events dropped because the buffer
	// stayed full after the emergency drain; the designed data-loss path
	telemetryEventsDroppedOverflow = "liquidations.ingest.dropped_overflow"

	// telemetryEventsDroppedPersist counts events lost when a drained batch
	// failed to persist
	telemetryEventsDroppedPersist = "liquidations.ingest.dropped_persist"

	// telemetryStreamErrors counts transport errors reported by the feed
	telemetryStreamErrors = "liquidations.stream.errors"

	// telemetryRetentionDeleted counts rows removed by the retention job
	telemetryRetentionDeleted = "liquidations.retention.deleted"

	// telemetryRetentionErrors counts failed purge attempts
	telemetryRetentionErrors = "liquidations.retention.errors"
)

// Telemetry constants for gauges and timings
const (
	// telemetryBufferSize tracks buffer occupancy after each admission
	telemetryBufferSize = "liquidations.ingest.buffer_size"

	// telemetryPersistDuration measures the time spent persisting one batch
	telemetryPersistDuration = "liquidations.ingest.persist.duration"

	// telemetryPurgeDuration measures the time spent on one retention purge
	telemetryPurgeDuration = "liquidations.retention.purge.duration"
)

// Telemetry constants for spans
const (
	// telemetrySpanDrainAndPersist covers draining the buffer and writing the batch
	telemetrySpanDrainAndPersist = "ingest.drainAndPersist"

	// telemetrySpanRetentionPurge covers one retention purge cycle
	telemetrySpanRetentionPurge = "retention.purge"
)
