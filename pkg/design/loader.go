package design

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNoDie is returned when a loaded design has no die area.
var ErrNoDie = errors.New("design has no die area")

var gzipMagic = []byte{0x1f, 0x8b}

// LoadFile reads a design document from a JSON or gzip-compressed JSON file
func LoadFile(filename string) (*Design, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Load(file)
}

// Load decodes a design document from r. Gzip input is detected by its magic bytes.
func Load(r io.Reader) (*Design, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read design: %w", err)
	}

	var src io.Reader = br
	if len(head) == 2 && head[0] == gzipMagic[0] && head[1] == gzipMagic[1] {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer zr.Close()
		src = zr
	}

	var d Design
	if err := json.NewDecoder(src).Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to decode design: %w", err)
	}
	if d.Die == nil {
		return nil, fmt.Errorf("design %q: %w", d.Name, ErrNoDie)
	}
	return &d, nil
}

// Summary holds entity counts for a design
type Summary struct {
	Name         string
	Die          Rect
	Instances    int
	Placed       int
	Nets         int
	RoutedNets   int
	SpecialNets  int
	Ports        int
	Layers       map[LayerType]int
	Vias         int
	Rows         int
	Tracks       int
	HasGCellGrid bool
}

// Summarize counts the entities of d.
func (d *Design) Summarize() Summary {
	s := Summary{
		Name:         d.Name,
		Instances:    len(d.Instances),
		Nets:         len(d.Nets),
		Ports:        len(d.BlockPins),
		Layers:       make(map[LayerType]int),
		Vias:         len(d.RoutingVias) + len(d.ViaDefinitions),
		Rows:         len(d.Rows),
		Tracks:       len(d.Tracks),
		HasGCellGrid: d.GCell != nil,
	}
	if d.Die != nil {
		s.Die = *d.Die
	}
	for _, inst := range d.Instances {
		if inst.IsPlaced {
			s.Placed++
		}
	}
	for _, n := range d.Nets {
		if n.IsRouted {
			s.RoutedNets++
		}
		if n.IsSpecial {
			s.SpecialNets++
		}
	}
	for _, l := range d.Layers {
		s.Layers[l.Type]++
	}
	return s
}
