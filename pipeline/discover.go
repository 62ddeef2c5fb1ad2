package pipeline

import (
	"io/fs"
	"math/rand"
	"path/filepath"
	"sort"
	"strings"
)

// audioExtensions are the container types accepted by file discovery.
// Anything else is silently excluded.
var audioExtensions = map[string]struct{}{
	".wav":  {},
	".mp3":  {},
	".flac": {},
	".m4a":  {},
	".ogg":  {},
	".aac":  {},
}

// DiscoverAudioFiles walks root recursively and returns the audio file
// paths found, sorted. When maxFiles > 0 and more files match, a seeded
// random sample of maxFiles paths is returned instead.
func DiscoverAudioFiles(root string, maxFiles int, seed int64) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := audioExtensions[ext]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)

	if maxFiles > 0 && len(files) > maxFiles {
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(len(files), func(i, j int) {
			files[i], files[j] = files[j], files[i]
		})
		files = files[:maxFiles]
		sort.Strings(files)
	}

	return files, nil
}
