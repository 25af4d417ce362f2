package binary

import (
	"fmt"
	"io"
)

// maxInitExprBytes bounds a constant expression's encoded length (spec.md
// §4.1 on the Global section): parsing fails past this many bytes
// without having seen END.
const maxInitExprBytes = 16384

// endOpcode terminates a constant expression.
const endOpcode = 0x0B

// readConstExpr captures the raw bytes of a constant expression, up to
// and including its terminating END. The engine evaluates these bytes
// lazily at instantiation time (internal/engine/interpreter), so the
// decoder's only job is to find where the expression ends.
func readConstExpr(r io.ByteReader) ([]byte, error) {
	var out []byte
	take := func() (byte, error) {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		out = append(out, b)
		return b, nil
	}

	for {
		if len(out) >= maxInitExprBytes {
			return nil, fmt.Errorf("init expression exceeds %d bytes", maxInitExprBytes)
		}
		b, err := take()
		if err != nil {
			return nil, fmt.Errorf("unterminated init expression: %w", err)
		}
		if b == endOpcode {
			return out, nil
		}
		// Opcodes used in constant expressions (const.i32/i64/f32/f64,
		// global.get) all carry either no immediate or one LEB/fixed-width
		// immediate; consume it so the END search doesn't stop on an
		// immediate byte that happens to equal 0x0B.
		switch b {
		case 0x41, 0x42, 0x23: // i32.const, i64.const, global.get: LEB immediate
			for {
				c, err := take()
				if err != nil {
					return nil, fmt.Errorf("bad init expression immediate: %w", err)
				}
				if c&0x80 == 0 {
					break
				}
			}
		case 0x43: // f32.const: 4 fixed bytes
			for i := 0; i < 4; i++ {
				if _, err := take(); err != nil {
					return nil, fmt.Errorf("bad init expression immediate: %w", err)
				}
			}
		case 0x44: // f64.const: 8 fixed bytes
			for i := 0; i < 8; i++ {
				if _, err := take(); err != nil {
					return nil, fmt.Errorf("bad init expression immediate: %w", err)
				}
			}
		}
	}
}
