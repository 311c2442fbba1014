package maze

import (
	"testing"
)

func TestGenerate_InvalidDimensions(t *testing.T) {
	if _, err := Generate(1, 5, 1); err != ErrBadDimension {
		t.Errorf("Expected ErrBadDimension for width 1, got %v", err)
	}
	if _, err := Generate(5, 1, 1); err != ErrBadDimension {
		t.Errorf("Expected ErrBadDimension for height 1, got %v", err)
	}
	if _, err := Generate(5, 5, 0); err != ErrBadLevelCount {
		t.Errorf("Expected ErrBadLevelCount for 0 levels, got %v", err)
	}
}

func TestGenerate_Shape(t *testing.T) {
	m, err := Generate(7, 4, 3)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(m.Levels) != 3 {
		t.Fatalf("Expected 3 levels, got %d", len(m.Levels))
	}

	for level, grid := range m.Levels {
		if len(grid) != 4 {
			t.Fatalf("Level %d: expected 4 rows, got %d", level, len(grid))
		}
		for y, row := range grid {
			if len(row) != 7 {
				t.Fatalf("Level %d row %d: expected 7 cells, got %d", level, y, len(row))
			}
			for x, cell := range row {
				if cell.X != x || cell.Y != y || cell.Level != level {
					t.Errorf("Cell at (%d,%d,%d) carries wrong coordinates: %+v", x, y, level, cell)
				}
			}
		}
	}
}

// TestGenerate_Connectivity verifies that a breadth-first traversal through
// cleared walls from (0,0) reaches every cell of every level.
func TestGenerate_Connectivity(t *testing.T) {
	sizes := []struct{ w, h, levels int }{
		{2, 2, 1},
		{5, 5, 1},
		{10, 10, 2},
		{3, 8, 3},
	}

	for _, size := range sizes {
		m, err := Generate(size.w, size.h, size.levels)
		if err != nil {
			t.Fatalf("Generate(%d,%d,%d) failed: %v", size.w, size.h, size.levels, err)
		}

		for level := 0; level < size.levels; level++ {
			seen := make(map[Position]bool)
			start := Position{X: 0, Y: 0, Level: level}
			queue := []Position{start}
			seen[start] = true

			for len(queue) > 0 {
				p := queue[0]
				queue = queue[1:]
				for _, dir := range []Direction{North, South, East, West} {
					if next, ok := m.Step(p, dir); ok && !seen[next] {
						seen[next] = true
						queue = append(queue, next)
					}
				}
			}

			if len(seen) != size.w*size.h {
				t.Errorf("maze %dx%d level %d: BFS reached %d of %d cells",
					size.w, size.h, level, len(seen), size.w*size.h)
			}
		}
	}
}

// TestGenerate_WallSymmetry verifies there are no one-way walls: a cell's wall
// flag toward its neighbor always matches the neighbor's opposite flag.
func TestGenerate_WallSymmetry(t *testing.T) {
	m, err := Generate(8, 8, 2)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for level := range m.Levels {
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				cell := m.At(level, x, y)
				if east := m.At(level, x+1, y); east != nil && cell.Walls.East != east.Walls.West {
					t.Errorf("asymmetric east/west wall between (%d,%d) and (%d,%d) on level %d", x, y, x+1, y, level)
				}
				if south := m.At(level, x, y+1); south != nil && cell.Walls.South != south.Walls.North {
					t.Errorf("asymmetric south/north wall between (%d,%d) and (%d,%d) on level %d", x, y, x, y+1, level)
				}
			}
		}
	}
}

// TestGenerate_BoundaryWalls verifies the outer edges of every level stay walled.
func TestGenerate_BoundaryWalls(t *testing.T) {
	m, err := Generate(6, 5, 1)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for x := 0; x < m.Width; x++ {
		if !m.At(0, x, 0).Walls.North {
			t.Errorf("top boundary open at x=%d", x)
		}
		if !m.At(0, x, m.Height-1).Walls.South {
			t.Errorf("bottom boundary open at x=%d", x)
		}
	}
	for y := 0; y < m.Height; y++ {
		if !m.At(0, 0, y).Walls.West {
			t.Errorf("west boundary open at y=%d", y)
		}
		if !m.At(0, m.Width-1, y).Walls.East {
			t.Errorf("east boundary open at y=%d", y)
		}
	}
}

func TestGenerate_OneKeyOneExitPerLevel(t *testing.T) {
	m, err := Generate(6, 6, 4)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for level := range m.Levels {
		keys, exits := 0, 0
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				cell := m.At(level, x, y)
				if cell.HasKey {
					keys++
				}
				if cell.HasExit {
					exits++
				}
			}
		}
		if keys != 1 {
			t.Errorf("level %d: expected exactly 1 key cell, got %d", level, keys)
		}
		if exits != 1 {
			t.Errorf("level %d: expected exactly 1 exit cell, got %d", level, exits)
		}
	}
}

func TestStep_WallsAndBounds(t *testing.T) {
	m, err := Generate(5, 5, 1)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			cell := m.At(0, x, y)
			pos := Position{X: x, Y: y}

			checks := []struct {
				dir     Direction
				wall    bool
				inBound bool
				want    Position
			}{
				{North, cell.Walls.North, y > 0, Position{X: x, Y: y - 1}},
				{South, cell.Walls.South, y < m.Height-1, Position{X: x, Y: y + 1}},
				{East, cell.Walls.East, x < m.Width-1, Position{X: x + 1, Y: y}},
				{West, cell.Walls.West, x > 0, Position{X: x - 1, Y: y}},
			}

			for _, c := range checks {
				next, moved := m.Step(pos, c.dir)
				if !c.wall && c.inBound {
					if !moved || next != c.want {
						t.Errorf("Step(%v, %s): expected move to %v, got %v moved=%v", pos, c.dir, c.want, next, moved)
					}
				} else {
					if moved || next != pos {
						t.Errorf("Step(%v, %s): expected no-op, got %v moved=%v", pos, c.dir, next, moved)
					}
				}
			}
		}
	}
}

func TestStep_UnknownDirection(t *testing.T) {
	m, err := Generate(3, 3, 1)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	next, moved := m.Step(Position{X: 1, Y: 1}, Direction("up"))
	if moved || next != (Position{X: 1, Y: 1}) {
		t.Errorf("Step with unknown direction should be a no-op, got %v moved=%v", next, moved)
	}
}

func TestClone_Independent(t *testing.T) {
	m, err := Generate(4, 4, 2)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	c := m.Clone()
	origKey := m.At(1, 2, 2).HasKey
	origWalls := m.At(0, 0, 0).Walls

	c.At(1, 2, 2).HasKey = !origKey
	c.At(0, 0, 0).Walls.East = !origWalls.East

	if m.At(1, 2, 2).HasKey != origKey {
		t.Error("mutating the clone's key flag leaked into the original")
	}
	if m.At(0, 0, 0).Walls != origWalls {
		t.Error("mutating the clone's walls leaked into the original")
	}
}
