package storage

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"photoshare/internal/models"
)

var operationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "photoshare_storage_operations_total",
		Help: "Image storage operations by backend, operation and result.",
	},
	[]string{"backend", "op", "result"},
)

type instrumented struct {
	next    ImageStorage
	backend string
}

// Instrument counts every call made through next.
func Instrument(next ImageStorage) ImageStorage {
	return &instrumented{next: next, backend: string(next.Kind())}
}

func (s *instrumented) observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	operationsTotal.WithLabelValues(s.backend, op, result).Inc()
}

func (s *instrumented) Kind() models.ImageKind {
	return s.next.Kind()
}

func (s *instrumented) Store(ctx context.Context, data []byte, contentType string) (models.ImageRef, error) {
	ref, err := s.next.Store(ctx, data, contentType)
	s.observe("store", err)
	return ref, err
}

func (s *instrumented) Retrieve(ctx context.Context, ref models.ImageRef) ([]byte, string, error) {
	data, contentType, err := s.next.Retrieve(ctx, ref)
	s.observe("retrieve", err)
	return data, contentType, err
}

func (s *instrumented) Delete(ctx context.Context, ref models.ImageRef) error {
	err := s.next.Delete(ctx, ref)
	s.observe("delete", err)
	return err
}
