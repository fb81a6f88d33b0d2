package palette

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"golang.org/x/image/riff"
)

/*
typedef struct tagLOGPALETTE {
  WORD         palVersion;
  WORD         palNumEntries;
  PALETTEENTRY palPalEntry[1];
} LOGPALETTE;

typedef struct tagPALETTEENTRY {
  BYTE peRed;
  BYTE peGreen;
  BYTE peBlue;
  BYTE peFlags;
} PALETTEENTRY;
*/

var (
	riffType = riff.FourCC{'R', 'I', 'F', 'F'}
	palType  = riff.FourCC{'P', 'A', 'L', ' '}
	dataType = riff.FourCC{'d', 'a', 't', 'a'}
)

// ReadRIFF reads a RIFF PAL stream. The colors of every data chunk are
// concatenated, in file order, into a single palette.
func ReadRIFF(r io.Reader, name string) (*Palette, error) {
	formType, rd, err := riff.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not open RIFF stream: %w", err)
	} else if formType != palType {
		return nil, fmt.Errorf("unsupported RIFF content type: %s", string(formType[:]))
	}

	colors, err := readChunks(rd, name, nil)
	if err != nil {
		return nil, err
	}

	return New(name, colors...)
}

func readChunks(r *riff.Reader, ident string, colors []Color) ([]Color, error) {
	for i := 0; ; i++ {
		id, size, data, err := r.Next()
		if err != nil {
			if err == io.EOF {
				return colors, nil
			}
			return nil, fmt.Errorf("could not read chunk %q#%d: %w", ident, i, err)
		}

		switch id {
		case riff.LIST:
			listType, list, lerr := riff.NewListReader(size, data)
			if lerr != nil {
				return nil, fmt.Errorf("could not read list from chunk %q#%d: %w", ident, i, lerr)
			} else if listType != palType {
				return nil, fmt.Errorf("chunk %q#%d unsupported type: %s", ident, i, string(listType[:]))
			}

			if colors, err = readChunks(list, fmt.Sprintf("%s%d.%s", ident, i, listType[:]), colors); err != nil {
				return nil, err
			}
		case dataType:
			if colors, err = readEntries(data, fmt.Sprintf("%s%d", ident, i), colors); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unsupported chunk type in %q#%d: %s", ident, i, id[:])
		}
	}
}

func readEntries(r io.Reader, ident string, colors []Color) ([]Color, error) {
	buf := make([]byte, 2)

	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("could not read version from chunk %s: %w", ident, err)
	}

	ver := binary.BigEndian.Uint16(buf)
	if ver != 3 {
		return nil, fmt.Errorf("unsupported palette version in chunk %s: %d", ident, ver)
	}

	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("could not read number of entries from chunk %s: %w", ident, err)
	}

	count := binary.LittleEndian.Uint16(buf)
	buf4 := make([]byte, 4)
	for i := range count {
		if _, err := io.ReadFull(r, buf4); err != nil {
			return nil, fmt.Errorf("could not read color %d/%d from chunk %s: %w", i, count, ident, err)
		}

		colors = append(colors, Color{R: buf4[0], G: buf4[1], B: buf4[2]})
	}

	return colors, nil
}

// WriteRIFF writes p as a RIFF PAL stream with a single data chunk and
// returns the number of colors written.
func WriteRIFF(w io.Writer, p *Palette) (int64, error) {
	colors := p.colors
	if len(colors) > math.MaxUint16 {
		return 0, fmt.Errorf("too many colors for a RIFF palette: %d, at most %d", len(colors), math.MaxUint16)
	}
	size := 4 + 4 + 4 + 4 + len(colors)*4 // form type + chunk id + chunk size + palVersion + palNumEntries + 4 bytes/color

	if err := writeBytes(w, riffType[:]); err != nil {
		return 0, fmt.Errorf("could not write RIFF magic: %w", err)
	}

	if err := writeBytes(w, binary.LittleEndian.AppendUint32(nil, uint32(size))); err != nil {
		return 0, fmt.Errorf("could not write document size: %w", err)
	}

	if err := writeBytes(w, palType[:]); err != nil {
		return 0, fmt.Errorf("could not write content type: %w", err)
	}

	if err := writeBytes(w, dataType[:]); err != nil {
		return 0, fmt.Errorf("could not write chunk type: %w", err)
	}

	if err := writeBytes(w, binary.LittleEndian.AppendUint32(nil, uint32(4+len(colors)*4))); err != nil {
		return 0, fmt.Errorf("could not write chunk size: %w", err)
	}

	if err := writeBytes(w, []byte{0, 0x03}); err != nil {
		return 0, fmt.Errorf("could not write palette version: %w", err)
	}

	if err := writeBytes(w, binary.LittleEndian.AppendUint16(nil, uint16(len(colors)))); err != nil {
		return 0, fmt.Errorf("could not write number of colors: %w", err)
	}

	for i, c := range colors {
		if err := writeBytes(w, []byte{c.R, c.G, c.B, 0x00}); err != nil {
			return int64(i), fmt.Errorf("could not write color %d/%d: %w", i, len(colors), err)
		}
	}

	return int64(len(colors)), nil
}

func writeBytes(w io.Writer, b []byte) error {
	n, err := w.Write(b)
	if err != nil {
		return err
	} else if n != len(b) {
		return fmt.Errorf("wrote only %d/%d bytes", n, len(b))
	}

	return nil
}
