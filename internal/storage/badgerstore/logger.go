package badgerstore

import (
	"fmt"
	"log/slog"
	"strings"
)

// slogAdapter routes badger's printf-style logging into slog
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Errorf(format string, args ...any) {
	a.logger.Error(msg(format, args), slog.String("component", "badger"))
}

func (a *slogAdapter) Warningf(format string, args ...any) {
	a.logger.Warn(msg(format, args), slog.String("component", "badger"))
}

func (a *slogAdapter) Infof(format string, args ...any) {
	a.logger.Info(msg(format, args), slog.String("component", "badger"))
}

func (a *slogAdapter) Debugf(format string, args ...any) {
	a.logger.Debug(msg(format, args), slog.String("component", "badger"))
}

func msg(format string, args []any) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}
