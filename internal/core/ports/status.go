package ports

import "go.trai.ch/imgopt/internal/core/domain"

// StatusSink receives user-facing progress events in emission order.
//
//go:generate go run go.uber.org/mock/mockgen -source=status.go -destination=mocks/mock_status.go -package=mocks
type StatusSink interface {
	Emit(event domain.StatusEvent)
}
