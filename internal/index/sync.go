package index

import "log/slog"

// Prune deletes every indexed post whose path is not in live, returning the
// number of rows removed. Failures are logged and skipped.
func Prune(db PostIndex, live map[string]struct{}, logger *slog.Logger) (int, error) {
	checksums, err := db.AllChecksums()
	if err != nil {
		return 0, err
	}

	removed := 0
	for p := range checksums {
		if _, ok := live[p]; ok {
			continue
		}
		if err := db.DeletePost(p); err != nil {
			logger.Warn("prune: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		removed++
		logger.Debug("prune: removed stale", slog.String("path", p))
	}
	return removed, nil
}
