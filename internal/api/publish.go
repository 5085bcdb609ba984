package api

import (
	"context"

	"github.com/apper-canvas/employee-registry-backend/internal/dto"
)

type lifecycleEvent string

const (
	eventCreated lifecycleEvent = "created"
	eventUpdated lifecycleEvent = "updated"
	eventDeleted lifecycleEvent = "deleted"
)

// publish announces a committed store change. The change already happened,
// so a broker failure is only logged.
func (s *Service) publish(ctx context.Context, ev lifecycleEvent, rec dto.EmployeeRecord) {
	if s.producer == nil {
		return
	}

	var err error
	switch ev {
	case eventCreated:
		err = s.producer.PublishCreated(ctx, rec)
	case eventUpdated:
		err = s.producer.PublishUpdated(ctx, rec)
	case eventDeleted:
		err = s.producer.PublishDeleted(ctx, rec)
	}

	if err != nil {
		s.log.Warn().Err(err).Str("event", string(ev)).Str("record_id", rec.ID).Msg("lifecycle event not published")
	}
}
