package emulator

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var ErrEmptyImage = errors.New("image contains no words")

// A program image: words to place in RAM and the address to start at
type Image struct {
	Entry uint32            // Address of the first instruction
	Words map[uint32]uint32 // Word contents by address
}

// Loads a text image. Each non-empty line holds one hex word, optionally
// prefixed by `address:` which moves the load address. `entry: addr`
// sets the entry point, otherwise it is the first loaded address.
// Everything after '#' is a comment
func LoadImage(r io.Reader, base uint32) (*Image, error) {
	img := &Image{Words: make(map[uint32]uint32)}
	addr := base
	entrySet := false
	first := true

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if key, val, ok := strings.Cut(line, ":"); ok {
			key = strings.TrimSpace(key)
			val = strings.TrimSpace(val)
			if key == "entry" {
				v, err := parseWord(val)
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid entry: %w", lineNo, err)
				}
				img.Entry = v
				entrySet = true
				continue
			}
			a, err := parseWord(key)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid address: %w", lineNo, err)
			}
			if a&3 != 0 {
				return nil, fmt.Errorf("line %d: address 0x%x is not word aligned", lineNo, a)
			}
			addr = a
			line = val
			if line == "" {
				continue
			}
		}

		w, err := parseWord(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid word: %w", lineNo, err)
		}
		if first && !entrySet {
			img.Entry = addr
		}
		first = false
		img.Words[addr] = w
		addr += 4
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(img.Words) == 0 {
		return nil, ErrEmptyImage
	}
	return img, nil
}

// Builds an image from consecutive words starting at `base`
func NewImage(base uint32, words []uint32) *Image {
	img := &Image{Entry: base, Words: make(map[uint32]uint32, len(words))}
	for i, w := range words {
		img.Words[base+uint32(i)*4] = w
	}
	return img
}

// Copies the image into `mem`
func (img *Image) Load(mem Memory) {
	for addr, w := range img.Words {
		mem.Store32(addr, w)
	}
}

func parseWord(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	return uint32(v), err
}
