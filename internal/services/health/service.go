package health

import "time"

// Status is the payload served on GET /.
type Status struct {
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
	Timestamp string            `json:"timestamp"`
}

// Service encapsulates health-related checks.
type Service struct {
	Now func() time.Time
}

// NewService constructs a new health service.
func NewService() *Service {
	return &Service{Now: time.Now}
}

// Status describes the running service and the routes it exposes.
func (s *Service) Status() Status {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return Status{
		Message: "Reclamala API - generador de descargos",
		Status:  "online",
		Endpoints: map[string]string{
			"GET /":              "estado del servicio",
			"POST /api/descargo": "genera el descargo en PDF a partir de la foto de la multa",
			"GET /metrics":       "métricas en formato Prometheus",
		},
		Timestamp: now().UTC().Format(time.RFC3339),
	}
}
