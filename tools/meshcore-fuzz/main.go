//go:build ignore

// Command meshcore-fuzz hammers codec.Parse with random and mutated
// frames, checking the one invariant that matters for a robustness
// tool: Parse never panics, and every input it doesn't understand comes
// back as a ParseFailure rather than a crash or a hang.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/meshcore-go/companion/codec"
)

// seedFrames are a handful of well-formed frames from both the
// solicited range and the push range (opcode 0x80 and up), so mutate
// has a realistic starting point for either category.
var seedFrames = [][]byte{
	{byte(codec.RespOK)},
	append([]byte{byte(codec.RespSelfInfo)}, make([]byte, codec.MinSelfInfoLen)...),
	append([]byte{byte(codec.RespContact)}, make([]byte, codec.ContactRecordSize)...),
	{byte(codec.RespAdvertisement)},
	{byte(codec.RespAck), 0, 0, 0, 0},
}

type stats struct {
	total        int
	parseFailure int
	maxLen       int
	byCode       map[byte]int
}

func main() {
	var (
		iterations = flag.Int("n", 100000, "number of frames to try")
		seed       = flag.Int64("seed", 1, "PRNG seed, for reproducible runs")
		mode       = flag.String("mode", "both", "random | mutate | both")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	s := &stats{byCode: make(map[byte]int)}

	for i := 0; i < *iterations; i++ {
		var frame []byte
		switch *mode {
		case "random":
			frame = randomFrame(rng)
		case "mutate":
			frame = mutateFrame(rng)
		default:
			if i%2 == 0 {
				frame = randomFrame(rng)
			} else {
				frame = mutateFrame(rng)
			}
		}
		runOne(frame, s)
	}

	report(s)
}

func randomFrame(rng *rand.Rand) []byte {
	n := rng.Intn(257)
	frame := make([]byte, n)
	_, _ = rng.Read(frame)
	return frame
}

func mutateFrame(rng *rand.Rand) []byte {
	src := seedFrames[rng.Intn(len(seedFrames))]
	frame := make([]byte, len(src))
	copy(frame, src)

	flips := rng.Intn(4) + 1
	for i := 0; i < flips; i++ {
		if len(frame) == 0 {
			break
		}
		frame[rng.Intn(len(frame))] ^= byte(1 << uint(rng.Intn(8)))
	}

	switch rng.Intn(3) {
	case 0:
		// truncate
		if len(frame) > 1 {
			frame = frame[:rng.Intn(len(frame))]
		}
	case 1:
		// pad
		frame = append(frame, make([]byte, rng.Intn(16))...)
	}
	return frame
}

func runOne(frame []byte, s *stats) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("PANIC on frame %x: %v\n", frame, r)
			os.Exit(1)
		}
	}()

	ev := codec.Parse(frame)
	s.total++
	if len(frame) > s.maxLen {
		s.maxLen = len(frame)
	}
	if ev.ParseFailure != nil {
		s.parseFailure++
		return
	}
	s.byCode[byte(ev.Code)]++
}

func report(s *stats) {
	fmt.Printf("=== meshcore-fuzz ===\n")
	fmt.Printf("frames tried:   %d\n", s.total)
	fmt.Printf("parse failures: %d (%.1f%%)\n", s.parseFailure, 100*float64(s.parseFailure)/float64(s.total))
	fmt.Printf("max frame len:  %d\n", s.maxLen)
	fmt.Printf("decoded by code:\n")
	for code, count := range s.byCode {
		fmt.Printf("  %-20s %d\n", codec.ResponseCode(code), count)
	}
}
