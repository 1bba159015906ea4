package atoms

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/pairenergy/internal/geom"
)

// ReadXYZFile reads every frame of an (extended) XYZ file.
func ReadXYZFile(path string) ([]*Atoms, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	frames, err := ReadXYZ(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return frames, nil
}

// ReadXYZ reads consecutive XYZ frames. The comment line may carry the
// extended-XYZ keys Lattice="ax ay az bx by bz cx cy cz" and pbc="T T T".
// A frame with a lattice but no pbc key is periodic along every axis.
func ReadXYZ(r io.Reader) ([]*Atoms, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var frames []*Atoms
	line := 0
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		line++
		return sc.Text(), true
	}

	for {
		head, ok := next()
		if !ok {
			break
		}
		head = strings.TrimSpace(head)
		if head == "" {
			continue
		}

		n, err := strconv.Atoi(head)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("line %d: bad atom count %q", line, head)
		}

		comment, ok := next()
		if !ok {
			return nil, fmt.Errorf("line %d: missing comment line", line)
		}
		frame, err := parseComment(comment)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		frame.Symbols = make([]string, 0, n)
		frame.Positions = make([]geom.Vec3, 0, n)
		for i := 0; i < n; i++ {
			text, ok := next()
			if !ok {
				return nil, fmt.Errorf("line %d: frame ended after %d of %d atoms", line, i, n)
			}
			fields := strings.Fields(text)
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: not enough columns (at least 4; got %d)", line, len(fields))
			}
			var p geom.Vec3
			for k := 0; k < 3; k++ {
				p[k], err = strconv.ParseFloat(fields[k+1], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
			}
			frame.Symbols = append(frame.Symbols, fields[0])
			frame.Positions = append(frame.Positions, p)
		}
		frames = append(frames, frame)
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, errors.New("no frames found")
	}
	return frames, nil
}

func parseComment(comment string) (*Atoms, error) {
	kv := commentKeys(comment)
	a := &Atoms{}

	lattice, hasLattice := kv["lattice"]
	if hasLattice {
		fields := strings.Fields(lattice)
		if len(fields) != 9 {
			return nil, fmt.Errorf("lattice needs 9 values, got %d", len(fields))
		}
		for k, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("lattice: %w", err)
			}
			a.CellVecs[k/3][k%3] = v
		}
		a.Periodic = geom.FullPBC
	}

	if pbc, ok := kv["pbc"]; ok {
		p, err := geom.ParsePBC(strings.Fields(pbc))
		if err != nil {
			return nil, err
		}
		a.Periodic = p
	}
	return a, nil
}

// commentKeys extracts key=value and key="quoted value" pairs. Keys are
// lower-cased; bare words without '=' are ignored.
func commentKeys(s string) map[string]string {
	out := make(map[string]string)
	for len(s) > 0 {
		s = strings.TrimLeft(s, " \t")
		eq := strings.IndexByte(s, '=')
		if eq < 0 {
			break
		}
		key := s[:eq]
		if sp := strings.LastIndexAny(key, " \t"); sp >= 0 {
			key = key[sp+1:]
		}
		s = s[eq+1:]

		var val string
		if strings.HasPrefix(s, "\"") {
			end := strings.IndexByte(s[1:], '"')
			if end < 0 {
				val, s = s[1:], ""
			} else {
				val, s = s[1:end+1], s[end+2:]
			}
		} else {
			end := strings.IndexAny(s, " \t")
			if end < 0 {
				val, s = s, ""
			} else {
				val, s = s[:end], s[end:]
			}
		}
		out[strings.ToLower(key)] = val
	}
	return out
}

// WriteXYZ writes sys as one extended-XYZ frame.
func WriteXYZ(w io.Writer, sys System) error {
	bw := bufio.NewWriter(w)
	cell := sys.Cell()

	fmt.Fprintf(bw, "%d\n", sys.Len())
	fmt.Fprintf(bw, "Lattice=\"%s\" Properties=species:S:1:pos:R:3 pbc=\"%s\"\n",
		formatCell(cell), sys.PBC())
	for i := 0; i < sys.Len(); i++ {
		p := sys.Position(i)
		fmt.Fprintf(bw, "%s %.10f %.10f %.10f\n", sys.Species(i), p[0], p[1], p[2])
	}
	return bw.Flush()
}

func formatCell(c geom.Cell) string {
	vals := make([]string, 0, 9)
	for _, row := range c {
		for _, v := range row {
			vals = append(vals, strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	return strings.Join(vals, " ")
}
