package bot

import (
	"bufio"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

// ConsoleLoop reads operator commands from r until "stop" is entered, which
// closes stop. It returns without closing stop when r is exhausted.
func ConsoleLoop(r io.Reader, stop chan<- struct{}) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "stop":
			close(stop)
			return
		default:
			log.Warn().Str("input", fields[0]).Msg("Unknown command. Use 'stop' to close the process.")
		}
	}
}
