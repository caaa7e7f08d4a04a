package hypr

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yourusername/gridswitch/internal/command"
	"github.com/yourusername/gridswitch/internal/daemon"
	"github.com/yourusername/gridswitch/internal/logging"
)

// GestureSource streams touchpad swipe events from Hyprland's event
// socket (socket2) into the daemon as raw swipe commands. Accumulation
// and the commit decision live in the switcher; this source only parses
// the wire format.
//
// Socket2 emits newline-delimited "EVENT>>DATA" lines. The swipe events
// are:
//
//	swipebegin  >> <fingers>
//	swipeupdate >> <fingers>,<dx>,<dy>
//	swipeend    >> <fingers>
//
// Some Hyprland builds prefix the event name with a namespace
// ("touchpad:swipebegin"); the prefix is stripped before matching.
type GestureSource struct {
	log zerolog.Logger
}

func NewGestureSource() *GestureSource {
	return &GestureSource{
		log: logging.Logger.With().Str("component", "gestures").Logger(),
	}
}

// Run connects to socket2 and forwards swipe commands until ctx is
// cancelled or the stream ends.
func (g *GestureSource) Run(ctx context.Context, sink chan<- daemon.Dispatch) error {
	path, err := EventSocketPath()
	if err != nil {
		return err
	}
	conn, err := net.Dial("unix", path)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", path, err)
	}
	g.log.Info().Str("socket", path).Msg("gesture source connected")

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		cmd, ok := parseGestureEvent(line)
		if !ok {
			continue
		}
		g.log.Debug().Stringer("command", cmd).Msg("gesture event")
		select {
		case sink <- daemon.Dispatch{Cmd: cmd}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("socket2 read: %w", err)
	}
	return fmt.Errorf("socket2 stream ended")
}

// parseEventLine splits an "EVENT>>DATA" line.
func parseEventLine(line string) (event, data string, ok bool) {
	sep := strings.Index(line, ">>")
	if sep < 0 {
		return "", "", false
	}
	return line[:sep], line[sep+2:], true
}

// parseGestureEvent turns one socket2 line into a swipe command, or
// reports false for events we do not care about or cannot parse.
func parseGestureEvent(line string) (command.Command, bool) {
	rawEvent, data, ok := parseEventLine(line)
	if !ok {
		return nil, false
	}
	event := rawEvent
	if i := strings.LastIndex(rawEvent, ":"); i >= 0 {
		event = rawEvent[i+1:]
	}

	switch event {
	case "swipebegin":
		fingers, err := parseFingers(strings.TrimSpace(data))
		if err != nil {
			return nil, false
		}
		return command.SwipeBegin{Fingers: fingers}, true

	case "swipeupdate":
		parts := strings.Split(strings.TrimSpace(data), ",")
		if len(parts) != 3 {
			return nil, false
		}
		fingers, err := parseFingers(parts[0])
		if err != nil {
			return nil, false
		}
		dx, err1 := strconv.ParseFloat(parts[1], 64)
		dy, err2 := strconv.ParseFloat(parts[2], 64)
		if err1 != nil || err2 != nil {
			return nil, false
		}
		return command.SwipeUpdate{Fingers: fingers, DX: dx, DY: dy}, true

	case "swipeend":
		return command.SwipeEnd{}, true

	default:
		return nil, false
	}
}

func parseFingers(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}
