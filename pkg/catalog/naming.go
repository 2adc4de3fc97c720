package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	catalogerrors "github.com/quarryfs/quarry/pkg/catalog/errors"
)

// maxNameProbes bounds the suffix search so a pathological folder cannot
// turn a rename into an unbounded scan.
const maxNameProbes = 1000

// NameReplacement returns a filename that does not collide with any asset in
// the given folder, derived from filename by appending "_N" before the
// extension: photo.jpg -> photo_1.jpg, photo_2.jpg, ...
//
// The first free suffix wins. The probe-then-use sequence is not atomic
// against concurrent writers; the store's (folder, filename) uniqueness is
// the final arbiter and callers may see a conflict on the subsequent move.
func NameReplacement(ctx context.Context, store Store, folderID uuid.UUID, filename string) (string, error) {
	base := filename
	ext := ""
	if idx := strings.LastIndexByte(filename, '.'); idx > 0 {
		base = filename[:idx]
		ext = filename[idx:]
	}

	for i := 1; i <= maxNameProbes; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		_, err := store.FindAsset(ctx, AssetCriteria{FolderID: folderID, Filename: candidate})
		if catalogerrors.IsNotFound(err) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}

	return "", catalogerrors.NewIOError(
		fmt.Sprintf("could not find a free name for %q after %d attempts", filename, maxNameProbes), nil)
}

// TitleFromFilename derives a display title from a filename: the extension
// is stripped, separators become spaces, and each word is title-cased.
// "summer-vacation_2016.jpg" -> "Summer Vacation 2016".
func TitleFromFilename(filename string) string {
	name := filename
	if idx := strings.LastIndexByte(name, '.'); idx > 0 {
		name = name[:idx]
	}

	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)

	words := strings.Fields(name)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 && r[0] >= 'a' && r[0] <= 'z' {
			r[0] = r[0] - 'a' + 'A'
			words[i] = string(r)
		}
	}

	return strings.Join(words, " ")
}
