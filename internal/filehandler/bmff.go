package filehandler

import (
	"fmt"
	"os"

	"github.com/abema/go-mp4"
)

// bmffHasCreationTime reports whether any movie, track or media header in an
// ISO-BMFF file carries a non-zero creation time.
func bmffHasCreationTime(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	found := false
	_, err = mp4.ReadBoxStructure(f, func(h *mp4.ReadHandle) (any, error) {
		if found {
			return nil, nil
		}

		switch h.BoxInfo.Type {
		case mp4.BoxTypeMoov(), mp4.BoxTypeTrak(), mp4.BoxTypeMdia():
			return h.Expand()
		case mp4.BoxTypeMvhd(), mp4.BoxTypeTkhd(), mp4.BoxTypeMdhd():
		default:
			return nil, nil
		}

		box, _, err := h.ReadPayload()
		if err != nil {
			return nil, fmt.Errorf("reading %s payload: %w", h.BoxInfo.Type, err)
		}

		switch b := box.(type) {
		case *mp4.Mvhd:
			found = b.GetCreationTime() != 0
		case *mp4.Tkhd:
			found = b.GetCreationTime() != 0
		case *mp4.Mdhd:
			found = b.GetCreationTime() != 0
		}
		return nil, nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}
