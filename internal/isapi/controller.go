package isapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"doorctl/internal/digest"
	"doorctl/internal/logging"
)

// OperationLogger is the sink for the per-operation audit line. A failure to
// write the line must never abort the operation, so implementations report
// their errors and the controller swallows them.
type OperationLogger interface {
	LogOperation(host string, doorNo int, state string, message string) error
}

// Controller orchestrates the full state-change sequence against one panel:
// configure the door relay policy, then send the remote-control command, and
// merge the two outcomes into one ControlResult.
//
// Controllers hold no cross-operation state; concurrent SetDoorState calls
// for different devices are independent.
type Controller struct {
	// OpLog receives one audit line per operation; may be nil
	OpLog OperationLogger

	// Timeout overrides the per-attempt transport timeout when non-zero
	Timeout time.Duration

	// transportFor builds the transport for one operation; tests override it
	transportFor func(DeviceTarget) *Transport
}

// NewController creates a Controller writing audit lines to oplog.
func NewController(oplog OperationLogger) *Controller {
	return &Controller{OpLog: oplog}
}

// SetDoorState runs both protocol steps for the requested transition and
// returns the aggregated result. Per-step failures are folded into the
// result and never abort the other step; only an unexpected panic aborts the
// operation, and it is logged and returned as a CriticalError.
//
// A fresh Digest authenticator is created per operation and shared across
// the two sequential requests, so the nonce count keeps incrementing within
// the operation and is never reused across operations.
func (c *Controller) SetDoorState(ctx context.Context, target DeviceTarget, cmd DoorCommand, doorNo int) (result ControlResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewCriticalError(fmt.Sprintf("door control panicked: %v", r), nil)
			logging.Error("critical failure during door control",
				zap.String("host", target.Host),
				zap.Int("door", doorNo),
				zap.String("state", cmd.String()),
				zap.Any("panic", r),
			)
			c.logOperation(target, doorNo, cmd, err.Error())
		}
	}()

	transportFor := c.transportFor
	if transportFor == nil {
		transportFor = func(t DeviceTarget) *Transport {
			return NewTransport(digest.NewAuthenticator(t.Login, t.Secret))
		}
	}
	transport := transportFor(target)
	if c.Timeout > 0 {
		transport.SetTimeout(c.Timeout)
	}

	outcomes := []OperationOutcome{
		c.configure(ctx, transport, target, cmd, doorNo),
		c.control(ctx, transport, target, cmd, doorNo),
	}

	failed := 0
	messages := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.Succeeded {
			failed++
		}
		messages = append(messages, o.Message)
	}

	result = ControlResult{
		Succeeded:  failed == 0,
		Message:    strings.Join(messages, "; "),
		ErrorCount: failed,
	}

	logging.Info("door control completed",
		zap.String("host", target.Host),
		zap.Int("door", doorNo),
		zap.String("state", cmd.String()),
		zap.Bool("succeeded", result.Succeeded),
		zap.Int("error_count", result.ErrorCount),
	)
	c.logOperation(target, doorNo, cmd, result.Message)

	return result, nil
}

// configure runs the door parameter step.
func (c *Controller) configure(ctx context.Context, transport *Transport, target DeviceTarget, cmd DoorCommand, doorNo int) OperationOutcome {
	req := ConfigRequest(cmd, doorNo)
	return c.send(ctx, transport, target, req, "configure")
}

// control runs the remote-control step, replaced by an automatic success
// when closing: a close is achieved purely by the configuration step.
func (c *Controller) control(ctx context.Context, transport *Transport, target DeviceTarget, cmd DoorCommand, doorNo int) OperationOutcome {
	req, ok := ControlRequest(cmd, doorNo)
	if !ok {
		return OperationOutcome{Succeeded: true, Message: "control: skipped for close"}
	}
	return c.send(ctx, transport, target, req, "control")
}

func (c *Controller) send(ctx context.Context, transport *Transport, target DeviceTarget, req Request, step string) OperationOutcome {
	body, err := transport.Do(ctx, target, req)
	if err == nil {
		err = interpretResponse(body)
	}
	if err != nil {
		logging.Warn("door control step failed",
			zap.String("host", target.Host),
			zap.String("step", step),
			zap.Error(err),
		)
		return OperationOutcome{Succeeded: false, Message: fmt.Sprintf("%s: %v", step, err)}
	}
	return OperationOutcome{Succeeded: true, Message: fmt.Sprintf("%s: ok", step)}
}

// logOperation writes the audit line. Log failures, including a panicking
// sink, are reported but never propagate into the operation result.
func (c *Controller) logOperation(target DeviceTarget, doorNo int, cmd DoorCommand, message string) {
	if c.OpLog == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logging.Warn("operation log sink panicked", zap.Any("panic", r))
		}
	}()
	if err := c.OpLog.LogOperation(target.Host, doorNo, cmd.String(), message); err != nil {
		logging.Warn("failed to write operation log", zap.Error(err))
	}
}
