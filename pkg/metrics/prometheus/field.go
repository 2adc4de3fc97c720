// Package prometheus provides Prometheus-backed implementations of the
// metric interfaces in pkg/metrics.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/quarryfs/quarry/pkg/metrics"
)

// fieldMetrics is the Prometheus implementation of FieldMetrics.
type fieldMetrics struct {
	foldersCreated  *prometheus.CounterVec
	folderConflicts *prometheus.CounterVec
	assetsIngested  *prometheus.CounterVec
	filesRejected   *prometheus.CounterVec
	assetsMoved     *prometheus.CounterVec
}

// NewFieldMetrics creates a new Prometheus-backed FieldMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewFieldMetrics() metrics.FieldMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &fieldMetrics{
		foldersCreated: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "quarry_folders_created_total",
				Help: "Total number of folders created during upload-target resolution",
			},
			[]string{"volume"},
		),
		folderConflicts: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "quarry_folder_create_conflicts_total",
				Help: "Total number of folder-create conflicts recovered as already-existing",
			},
			[]string{"volume"},
		),
		assetsIngested: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "quarry_assets_ingested_total",
				Help: "Total number of assets persisted from intake",
			},
			[]string{"source"}, // "inline", "upload"
		),
		filesRejected: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "quarry_files_rejected_total",
				Help: "Total number of files rejected by the extension allow-list",
			},
			[]string{"extension"},
		),
		assetsMoved: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "quarry_assets_moved_total",
				Help: "Total number of assets relocated during post-save reconciliation",
			},
			[]string{"renamed"}, // "true", "false"
		),
	}
}

func (m *fieldMetrics) RecordFolderCreated(volumeID string) {
	if m == nil {
		return
	}
	m.foldersCreated.WithLabelValues(volumeID).Inc()
}

func (m *fieldMetrics) RecordFolderConflict(volumeID string) {
	if m == nil {
		return
	}
	m.folderConflicts.WithLabelValues(volumeID).Inc()
}

func (m *fieldMetrics) RecordAssetIngested(source string) {
	if m == nil {
		return
	}
	m.assetsIngested.WithLabelValues(source).Inc()
}

func (m *fieldMetrics) RecordFileRejected(extension string) {
	if m == nil {
		return
	}
	m.filesRejected.WithLabelValues(extension).Inc()
}

func (m *fieldMetrics) RecordAssetMoved(renamed bool) {
	if m == nil {
		return
	}
	label := "false"
	if renamed {
		label = "true"
	}
	m.assetsMoved.WithLabelValues(label).Inc()
}
