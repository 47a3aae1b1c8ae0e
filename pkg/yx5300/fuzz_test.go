// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package yx5300

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// randomGarbage returns bytes that never contain StartByte
func randomGarbage(rng *rand.Rand, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		b := byte(rng.Intn(256))
		if b == StartByte {
			b = 0x00
		}
		out[i] = b
	}
	return out
}

func TestFuzz_EncodeLayout(t *testing.T) {
	rng := newFuzzRng(t)
	for i := 0; i < getFuzzRounds(); i++ {
		op, a1, a2 := byte(rng.Intn(256)), byte(rng.Intn(256)), byte(rng.Intn(256))
		f := Encode(op, a1, a2)
		if len(f) != 8 || f[0] != 0x7E || f[7] != 0xEF || f[3] != op || f[5] != a1 || f[6] != a2 {
			t.Fatalf("round %d: Encode(0x%02X, 0x%02X, 0x%02X) = % X", i, op, a1, a2, f)
		}
	}
}

func TestFuzz_ResyncAfterGarbage(t *testing.T) {
	rng := newFuzzRng(t)
	for i := 0; i < getFuzzRounds(); i++ {
		status := uint8(rng.Intn(256))
		data := uint16(rng.Intn(65536))
		garbage := randomGarbage(rng, rng.Intn(32))

		buf := NewBuffer(append(garbage, buildResponse(status, data)...))
		r, err := NewDecoder().TryDecodeOne(context.Background(), buf)
		if err != nil {
			t.Fatalf("round %d: decode error: %v", i, err)
		}
		if r == nil {
			t.Fatalf("round %d: no frame after %d garbage bytes", i, len(garbage))
		}
		if uint8(r.Status()) != status || r.Data() != data {
			t.Fatalf("round %d: got 0x%02X/%d, want 0x%02X/%d", i, uint8(r.Status()), r.Data(), status, data)
		}
	}
}

func TestFuzz_RandomStreamNeverPanics(t *testing.T) {
	rng := newFuzzRng(t)
	for i := 0; i < getFuzzRounds(); i++ {
		stream := make([]byte, rng.Intn(64))
		rng.Read(stream)

		buf := NewBuffer(stream)
		dec := NewDecoder()
		for attempts := 0; attempts < 64; attempts++ {
			r, err := dec.TryDecodeOne(context.Background(), buf)
			if err != nil {
				if !errors.Is(err, ErrMalformedFrame) {
					t.Fatalf("round %d: unexpected error %v", i, err)
				}
				continue
			}
			if r == nil {
				break
			}
			if r.Raw()[9] != EndByte {
				t.Fatalf("round %d: accepted frame without end byte: % X", i, r.Raw())
			}
		}
		if buf.Buffered() >= ResponseFrameSize {
			t.Fatalf("round %d: decoder stopped with %d bytes buffered", i, buf.Buffered())
		}
	}
}
