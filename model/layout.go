package model

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const EMPTY_TOKEN = ".."

// ReadBoard parses a board layout: one line per row, cells separated by a
// single space, ".." for an empty cell or a player digit followed by the dots
// count, e.g. "13" is player 1 with THREE dots. The side is taken from the
// first row.
func ReadBoard(reader io.Reader, opts ...Option) (*Board, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Split(bufio.ScanLines)
	rows := make([][]StaticCell, 0)
	line := 0
	for scanner.Scan() {
		line++
		s := strings.TrimRight(scanner.Text(), " \r")
		if s == "" {
			continue
		}
		tokens := strings.Split(s, " ")
		row := make([]StaticCell, 0, len(tokens))
		for col, token := range tokens {
			cell, err := parseCell(token)
			if err != nil {
				return nil, fmt.Errorf("line %d col %d: %w", line, col+1, err)
			}
			row = append(row, cell)
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("line %d: %d cells, expected %d", line, len(row), len(rows[0]))
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrInvalidSide)
	}
	if len(rows) != len(rows[0]) {
		return nil, fmt.Errorf("%w: %d rows of %d cells", ErrInvalidSide, len(rows), len(rows[0]))
	}

	b, err := NewBoard(len(rows), opts...)
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		for x, cell := range row {
			b.set(x, y, cell)
		}
	}
	return b, nil
}

func parseCell(token string) (StaticCell, error) {
	if token == EMPTY_TOKEN {
		return StaticCell{}, nil
	}
	if len(token) != 2 {
		return StaticCell{}, fmt.Errorf("bad cell %q", token)
	}
	player, dots := token[0], token[1]
	if player < '0' || player > '9' {
		return StaticCell{}, fmt.Errorf("bad player in %q", token)
	}
	if dots < '1' || dots > '3' {
		return StaticCell{}, fmt.Errorf("bad dots in %q", token)
	}
	return StaticCell{Owner: PlayerId(player - '0'), Value: Dots(dots - '0')}, nil
}

// String renders the board in the layout ReadBoard accepts. Owners above 9
// cannot be represented and are printed as '?'.
func (b *Board) String() string {
	sb := strings.Builder{}
	b.Each(func(x, y int, c StaticCell) {
		if x > 0 {
			sb.WriteByte(' ')
		}
		switch {
		case c.Empty():
			sb.WriteString(EMPTY_TOKEN)
		case c.Owner >= 0 && c.Owner <= 9:
			sb.WriteByte(byte('0' + c.Owner))
			sb.WriteByte(byte('0' + c.Value))
		default:
			sb.WriteByte('?')
			sb.WriteByte(byte('0' + c.Value))
		}
		if x == b.side-1 {
			sb.WriteByte('\n')
		}
	})
	return sb.String()
}
