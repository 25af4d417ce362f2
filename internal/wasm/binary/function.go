package binary

import "io"

// decodeFunctionSection reads the vector of type indices, one per locally
// defined function; it's joined with the Code section's bodies by the
// caller (decoder.go's joinFunctionsAndCode).
func decodeFunctionSection(r io.ByteReader) ([]uint32, error) {
	count, _, err := readU32(r)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, count)
	for i := range out {
		out[i], _, err = readU32(r)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
