package playback

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode"

	"Blockbuster/logger"
)

// interKeyDelay is the pause between consecutive key presses. The device drops
// presses that arrive back to back.
const interKeyDelay = 100 * time.Millisecond

// DeviceClient issues control-protocol calls against one device address.
type DeviceClient interface {
	Launch(ctx context.Context, device, channelID, params string) error
	Keypress(ctx context.Context, device string, key string) error
}

// Clock abstracts real-time pacing so tests can fast-forward waits instead of
// sleeping for real milliseconds.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Executor sends resolved playback commands to devices. Execution against one
// device is serialized: the control protocol has no session or queuing
// guarantee, so concurrent sequences would interleave their keypresses.
type Executor struct {
	client DeviceClient
	clock  Clock

	mu      sync.Mutex
	devices map[string]*sync.Mutex
}

// NewExecutor creates an executor using the real clock.
func NewExecutor(client DeviceClient) *Executor {
	return NewExecutorWithClock(client, realClock{})
}

// NewExecutorWithClock creates an executor with an injected clock.
func NewExecutorWithClock(client DeviceClient, clock Clock) *Executor {
	return &Executor{
		client:  client,
		clock:   clock,
		devices: make(map[string]*sync.Mutex),
	}
}

func (e *Executor) lockFor(device string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.devices[device]
	if !ok {
		l = &sync.Mutex{}
		e.devices[device] = l
	}
	return l
}

// Execute sends cmd to the device. The call blocks until the whole command has
// been issued. Cancelling ctx stops the sequence at the next step boundary;
// steps already sent cannot be undone. The executor performs no verification
// that the device reached the intended screen.
func (e *Executor) Execute(ctx context.Context, device string, cmd Command) error {
	lock := e.lockFor(device)
	lock.Lock()
	defer lock.Unlock()

	switch c := cmd.(type) {
	case DeepLink:
		logger.Info("executing deep link",
			logger.String("device", device),
			logger.String("channel", c.ChannelID))
		if err := e.client.Launch(ctx, device, c.ChannelID, c.Params); err != nil {
			return err
		}
		return nil
	case ActionSequence:
		logger.Info("executing action sequence",
			logger.String("device", device),
			logger.Int("steps", len(c.Actions)))
		for i, action := range c.Actions {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("sequence cancelled before step %d: %w", i+1, err)
			}
			if err := e.runAction(ctx, device, action); err != nil {
				return fmt.Errorf("sequence aborted at step %d (%s): %w", i+1, action.String(), err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported command type %T", cmd)
	}
}

func (e *Executor) runAction(ctx context.Context, device string, action Action) error {
	switch a := action.(type) {
	case Launch:
		return e.client.Launch(ctx, device, a.ChannelID, a.Params)
	case Press:
		count := a.Count
		if count < 1 {
			count = 1
		}
		for i := 0; i < count; i++ {
			if i > 0 {
				if err := e.clock.Sleep(ctx, interKeyDelay); err != nil {
					return err
				}
			}
			if err := e.client.Keypress(ctx, device, string(a.Key)); err != nil {
				return err
			}
		}
		return nil
	case Type:
		return e.typeText(ctx, device, a.Text)
	case Wait:
		return e.clock.Sleep(ctx, time.Duration(a.Milliseconds)*time.Millisecond)
	default:
		return fmt.Errorf("unsupported action type %T", action)
	}
}

// typeText decomposes text into one literal key press per character. Letters
// are uppercased, digits sent as-is, a space becomes Lit_%20. Anything else is
// skipped with a warning; it never aborts the sequence.
func (e *Executor) typeText(ctx context.Context, device, text string) error {
	first := true
	for _, r := range text {
		key, ok := literalKey(r)
		if !ok {
			logger.Warn("skipping untypable character",
				logger.String("device", device),
				logger.String("char", string(r)))
			continue
		}
		if !first {
			if err := e.clock.Sleep(ctx, interKeyDelay); err != nil {
				return err
			}
		}
		first = false
		if err := e.client.Keypress(ctx, device, key); err != nil {
			return err
		}
	}
	return nil
}

func literalKey(r rune) (string, bool) {
	switch {
	case unicode.IsLetter(r) && r <= unicode.MaxASCII:
		return "Lit_" + string(unicode.ToUpper(r)), true
	case unicode.IsDigit(r) && r <= unicode.MaxASCII:
		return "Lit_" + string(r), true
	case r == ' ':
		return "Lit_%20", true
	default:
		return "", false
	}
}
