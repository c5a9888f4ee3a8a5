package postgres

// SQL queries for record, medical resource and access log storage.

const (
	// queryFetchRecords returns rows of one record type intersecting [$2, $3).
	// A zero-length row is a point and matches when $2 <= start < $3.
	// $4 restricts data origins; an empty array disables it.
	queryFetchRecords = `
		SELECT
			row_id, uuid, record_type, data_origin,
			start_time, end_time, start_zone_offset, end_zone_offset,
			payload, segments, samples
		FROM records
		WHERE record_type = $1
		  AND start_time < $3
		  AND (end_time > $2 OR (end_time = start_time AND start_time >= $2))
		  AND (cardinality($4::text[]) = 0 OR data_origin = ANY($4::text[]))
		ORDER BY start_time ASC, row_id ASC
	`

	// queryReadMedicalPage fetches one page after a row id cursor.
	// The window count is evaluated before LIMIT, so total is every match
	// after the cursor including this page.
	queryReadMedicalPage = `
		SELECT
			row_id, id, resource_type, data_source_id, fhir_version, data, last_modified,
			COUNT(*) OVER () AS total
		FROM medical_resources
		WHERE resource_type = $1
		  AND (cardinality($2::uuid[]) = 0 OR data_source_id = ANY($2::uuid[]))
		  AND row_id > $3
		ORDER BY row_id ASC
		LIMIT $4
	`

	queryInsertAccessLog = `
		INSERT INTO access_logs (
			id, caller_package, record_types, operation, access_time, data_origins
		)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	// queryPruneAccessLogs deletes the oldest expired entries in one bounded batch.
	queryPruneAccessLogs = `
		DELETE FROM access_logs
		WHERE id IN (
			SELECT id
			FROM access_logs
			WHERE access_time < $1
			ORDER BY access_time ASC
			LIMIT $2
		)
	`

	// queryInsertRecord skips a uuid that already exists; the caller turns
	// zero affected rows into storage.ErrDuplicate.
	queryInsertRecord = `
		INSERT INTO records (
			uuid, record_type, data_origin, start_time, end_time,
			start_zone_offset, end_zone_offset, payload, segments, samples
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (uuid) DO NOTHING
	`

	queryUpsertMedicalResource = `
		INSERT INTO medical_resources (
			id, resource_type, data_source_id, fhir_version, data, last_modified
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (data_source_id, resource_type, id) DO UPDATE SET
			fhir_version  = EXCLUDED.fhir_version,
			data          = EXCLUDED.data,
			last_modified = EXCLUDED.last_modified
	`
)
