package render

import (
	"fmt"
	"path/filepath"
)

// AssetDecodeError reports a segment whose source clip could not be read or
// re-encoded. The segment is dropped and the run continues. Slot is -1 when
// the clip failed during inventory probing.
type AssetDecodeError struct {
	Slot int
	Path string
	Err  error
}

func (e *AssetDecodeError) Error() string {
	if e.Slot < 0 {
		return fmt.Sprintf("decode %s: %v", filepath.Base(e.Path), e.Err)
	}
	return fmt.Sprintf("segment %d: decode %s: %v", e.Slot+1, filepath.Base(e.Path), e.Err)
}

func (e *AssetDecodeError) Unwrap() error { return e.Err }

// AudioLoadError reports background music that could not be used. The
// video is rendered without an audio stream instead.
type AudioLoadError struct {
	Path string
	Err  error
}

func (e *AudioLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load background music: %v", e.Err)
	}
	return fmt.Sprintf("load background music %s: %v", filepath.Base(e.Path), e.Err)
}

func (e *AudioLoadError) Unwrap() error { return e.Err }

// EncodeError reports a failed final encode or card render. The final output
// file may be partial; a failed card file is removed.
type EncodeError struct {
	Output string
	Err    error
	Detail string
}

func (e *EncodeError) Error() string {
	msg := fmt.Sprintf("encode %s: %v", e.Output, e.Err)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *EncodeError) Unwrap() error { return e.Err }
