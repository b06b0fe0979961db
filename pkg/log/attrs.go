package log

import "log/slog"

func FlowID[T ~string](id T) slog.Attr {
	return slog.String("flow_id", string(id))
}

func StepKey[T ~string](key T) slog.Attr {
	return slog.String("step_key", string(key))
}

func EntityID[T ~string](id T) slog.Attr {
	return slog.String("entity_id", string(id))
}

func Method(method string) slog.Attr {
	return slog.String("method", method)
}

func Path(path string) slog.Attr {
	return slog.String("path", path)
}

func Status(code int) slog.Attr {
	return slog.Int("status", code)
}

func ErrorKind[T ~string](kind T) slog.Attr {
	return slog.String("error_kind", string(kind))
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}
