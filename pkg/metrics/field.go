package metrics

// FieldMetrics provides observability for upload-target resolution and
// asset ingestion.
//
// This interface is optional - pass nil to disable metrics collection
// with zero overhead.
type FieldMetrics interface {
	// RecordFolderCreated counts a folder created during resolution,
	// labeled by volume.
	RecordFolderCreated(volumeID string)

	// RecordFolderConflict counts a folder-create conflict that was
	// recovered by adopting the existing folder.
	RecordFolderConflict(volumeID string)

	// RecordAssetIngested counts a successfully persisted asset,
	// labeled by the intake source ("inline" or "upload").
	RecordAssetIngested(source string)

	// RecordFileRejected counts a file rejected by the extension
	// allow-list.
	RecordFileRejected(extension string)

	// RecordAssetMoved counts a reconciliation move, labeled by
	// whether the asset was renamed to avoid a collision.
	RecordAssetMoved(renamed bool)
}
