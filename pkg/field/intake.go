package field

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/quarryfs/quarry/internal/logger"
	"github.com/quarryfs/quarry/pkg/catalog"
	"github.com/quarryfs/quarry/pkg/filekind"
	"github.com/quarryfs/quarry/pkg/metrics"
)

// SourceKind tells where an incoming file came from.
type SourceKind string

const (
	// SourceInline marks a file decoded from an inline data URI.
	SourceInline SourceKind = "inline"

	// SourceUpload marks a file received through the multipart
	// upload channel.
	SourceUpload SourceKind = "upload"
)

// IncomingFile is a transient descriptor produced by intake; it is
// discarded once converted to an asset or rejected.
type IncomingFile struct {
	Filename  string
	Extension string
	Source    SourceKind

	// Data holds the decoded payload for inline files.
	Data []byte

	// TempPath points at the received file for multipart uploads.
	TempPath string
}

// Upload is a file received through the surrounding multipart channel.
type Upload struct {
	Filename string
	TempPath string
}

// PostedValue is the form data posted for one asset field.
type PostedValue struct {
	// SelectedIDs is the selection posted with the form, as strings.
	// The enclosing save pipeline applies it to the element before
	// BeforeSave runs; intake only consumes the file entries.
	SelectedIDs []string

	// InlineData holds data URI payloads (data:<mime>;base64,<payload>).
	InlineData []string

	// Filenames optionally names InlineData entries by position.
	Filenames []string

	// Uploads are the multipart files posted for this field.
	Uploads []Upload
}

// dataURIPattern matches the inline payload convention recognized
// during intake.
var dataURIPattern = regexp.MustCompile(`^data:([a-zA-Z0-9!#$&^_.+-]+/[a-zA-Z0-9!#$&^_.+-]+);base64,(.+)$`)

// syntheticBasename names inline payloads that arrive without a
// filename hint.
const syntheticBasename = "Uploaded_file"

// FileIntake normalizes posted file descriptors into a uniform list and
// applies the extension allow-list.
type FileIntake struct {
	metrics metrics.FieldMetrics
}

// NewFileIntake creates an intake. metrics may be nil.
func NewFileIntake(m metrics.FieldMetrics) *FileIntake {
	return &FileIntake{metrics: m}
}

// Collect parses the posted value into incoming files and partitions
// them against the allowed extension set (nil = everything allowed).
//
// Undecodable or empty inline entries are skipped silently. Any
// rejected filename means the caller must not ingest the accepted
// files either; partial acceptance would leave an inconsistent
// selection.
func (fi *FileIntake) Collect(posted PostedValue, allowed map[string]struct{}) ([]IncomingFile, []string) {
	var files []IncomingFile

	for i, entry := range posted.InlineData {
		file, ok := fi.parseInline(entry, filenameHint(posted.Filenames, i))
		if ok {
			files = append(files, file)
		}
	}

	for _, upload := range posted.Uploads {
		files = append(files, IncomingFile{
			Filename:  upload.Filename,
			Extension: catalog.ExtensionOf(upload.Filename),
			Source:    SourceUpload,
			TempPath:  upload.TempPath,
		})
	}

	if allowed == nil {
		return files, nil
	}

	var accepted []IncomingFile
	var rejected []string
	for _, file := range files {
		if extensionAllowed(allowed, file.Extension) {
			accepted = append(accepted, file)
			continue
		}
		rejected = append(rejected, file.Filename)
		if fi.metrics != nil {
			fi.metrics.RecordFileRejected(file.Extension)
		}
	}
	return accepted, rejected
}

// parseInline decodes one data URI entry. The second return is false
// when the entry should be skipped.
func (fi *FileIntake) parseInline(entry, nameHint string) (IncomingFile, bool) {
	match := dataURIPattern.FindStringSubmatch(entry)
	if match == nil {
		return IncomingFile{}, false
	}
	mimeType, payload := match[1], match[2]

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		logger.Debug("skipping undecodable inline payload", "mime", mimeType, "error", err)
		return IncomingFile{}, false
	}

	filename := nameHint
	if filename == "" {
		ext, ok := filekind.ExtensionByMIME(mimeType)
		if !ok {
			logger.Debug("skipping inline payload with unknown mime type", "mime", mimeType)
			return IncomingFile{}, false
		}
		filename = syntheticBasename + "." + ext
	}

	return IncomingFile{
		Filename:  filename,
		Extension: catalog.ExtensionOf(filename),
		Source:    SourceInline,
		Data:      data,
	}, true
}

func filenameHint(hints []string, i int) string {
	if i < len(hints) {
		return strings.TrimSpace(hints[i])
	}
	return ""
}

// allowedSetForKinds computes the permitted extensions for a kind list.
func allowedSetForKinds(kinds []string) map[string]struct{} {
	return filekind.ExtensionsForKinds(kinds)
}

func extensionAllowed(allowed map[string]struct{}, extension string) bool {
	return filekind.IsAllowed(allowed, extension)
}
