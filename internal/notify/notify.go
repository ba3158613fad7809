// Package notify turns queued defect status changes into resident-facing
// notifications: a persisted feed entry plus a best-effort push to the
// resident's registered devices.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/banseok/hajaro"
	"github.com/banseok/hajaro/internal/queue"
)

// Notifier builds the queue handler for defect status-change jobs.
type Notifier struct {
	defects       hajaro.DefectService
	users         hajaro.UserService
	notifications hajaro.NotificationService
	tokens        hajaro.DeviceTokenService
	push          hajaro.PushSender
	logger        *slog.Logger
}

// NewNotifier creates a Notifier backed by the given services.
func NewNotifier(
	defects hajaro.DefectService,
	users hajaro.UserService,
	notifications hajaro.NotificationService,
	tokens hajaro.DeviceTokenService,
	push hajaro.PushSender,
	logger *slog.Logger,
) *Notifier {
	return &Notifier{
		defects:       defects,
		users:         users,
		notifications: notifications,
		tokens:        tokens,
		push:          push,
		logger:        logger,
	}
}

// pushMessageForStatus maps a new status to its push message. Statuses
// without a dedicated message (SCHEDULED, REJECTED, CANCELED) persist a
// feed entry but send no push.
func pushMessageForStatus(status hajaro.DefectStatus) (hajaro.PushMessage, bool) {
	switch status {
	case hajaro.DefectStatusPartnerNotAssigned:
		return hajaro.PushCreateDefect, true
	case hajaro.DefectStatusPartnerAssigned:
		return hajaro.PushAssignDefect, true
	case hajaro.DefectStatusRepaired:
		return hajaro.PushRepairDefect, true
	case hajaro.DefectStatusConfirmed:
		return hajaro.PushConfirmDefect, true
	default:
		return hajaro.PushMessage{}, false
	}
}

// StatusChangedHandler returns the handler for defect_status_changed jobs.
//
// The handler re-reads the defect, renders the resident message for the
// status carried in the job payload, persists the notification, and pushes
// to the resident's devices. Push delivery is best effort: a send failure
// is logged and the job still completes. A defect that no longer exists
// completes the job rather than retrying forever.
func (n *Notifier) StatusChangedHandler() queue.JobHandler {
	return func(ctx context.Context, job *queue.Job) (map[string]interface{}, error) {
		start := time.Now()

		defect, err := n.defects.FindDefectByID(ctx, job.DefectID)
		if err != nil {
			if hajaro.IsErrorCode(err, hajaro.ENOTFOUND) {
				n.logger.Warn("skipping notification for missing defect",
					slog.String("defect_id", job.DefectID.String()),
				)
				return map[string]interface{}{"skipped": "defect not found"}, nil
			}
			return nil, err
		}

		// The payload carries the status at the moment of the transition,
		// which may lag the defect's current status.
		if s, ok := job.Payload["status"].(string); ok && s != "" {
			defect.Status = hajaro.DefectStatus(s)
		}

		notification := &hajaro.Notification{
			ResidentID: defect.ResidentID,
			DefectID:   defect.ID,
			Status:     defect.Status,
			Message:    hajaro.ResidentNotificationMessage(defect),
			Thumbnail:  defect.RequestedImage,
		}
		if err := n.notifications.CreateNotification(ctx, notification); err != nil {
			return nil, err
		}

		notified, err := n.sendPush(ctx, defect)
		if err != nil {
			n.logger.Error("push delivery failed",
				slog.String("defect_id", defect.ID.String()),
				slog.String("error", err.Error()),
			)
		}

		return map[string]interface{}{
			"tokens_notified": notified,
			"processing_time": time.Since(start).String(),
		}, nil
	}
}

// sendPush delivers the status push to the resident's devices, honoring
// the push opt-out. Returns the number of tokens targeted.
func (n *Notifier) sendPush(ctx context.Context, defect *hajaro.Defect) (int, error) {
	msg, ok := pushMessageForStatus(defect.Status)
	if !ok {
		return 0, nil
	}

	resident, err := n.users.FindUserByID(ctx, defect.ResidentID)
	if err != nil {
		return 0, err
	}
	if !resident.ReceivePush {
		return 0, nil
	}

	deviceTokens, err := n.tokens.FindDeviceTokensByUser(ctx, defect.ResidentID)
	if err != nil {
		return 0, err
	}
	if len(deviceTokens) == 0 {
		return 0, nil
	}

	tokens := make([]string, 0, len(deviceTokens))
	for _, t := range deviceTokens {
		tokens = append(tokens, t.Token)
	}

	if err := n.push.Send(ctx, tokens, msg, defect.RequestedImage); err != nil {
		return 0, err
	}

	return len(tokens), nil
}
