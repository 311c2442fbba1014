// Package maze 实现多层迷宫的数据模型与随机生成。
//
// 每一层独立生成：从 (0,0) 开始随机游走，允许走回已访问的格子，
// 每走一步就在两侧同时打通墙壁，直到所有格子都被访问过。
// 因此打通的墙构成一个覆盖全部格子的连通子图（可能含环）。
package maze

import (
	"errors"
	"math/rand"
)

// Direction 移动方向
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

var (
	ErrBadDimension  = errors.New("maze dimensions must be at least 2x2")
	ErrBadLevelCount = errors.New("maze must have at least one level")
)

// Walls 四个方向的墙标记，true 表示有墙、不可通行
type Walls struct {
	North bool `json:"north"`
	South bool `json:"south"`
	East  bool `json:"east"`
	West  bool `json:"west"`
}

// Cell 迷宫中的一个格子。拾取钥匙后 HasKey 会被清除。
type Cell struct {
	X       int   `json:"x"`
	Y       int   `json:"y"`
	Level   int   `json:"level"`
	Walls   Walls `json:"walls"`
	HasKey  bool  `json:"hasKey"`
	HasExit bool  `json:"hasExit"`
}

// Position 玩家坐标
type Position struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Level int `json:"level"`
}

// Maze 多层迷宫。Levels[level][y][x] 的索引顺序与客户端渲染一致。
type Maze struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Levels [][][]Cell `json:"levels"`
}

// Generate 生成 levels 层 width x height 的迷宫。
// 每层恰好有一个出口格和一个钥匙格，两者可能落在同一格。
func Generate(width, height, levels int) (*Maze, error) {
	if width < 2 || height < 2 {
		return nil, ErrBadDimension
	}
	if levels < 1 {
		return nil, ErrBadLevelCount
	}

	m := &Maze{
		Width:  width,
		Height: height,
		Levels: make([][][]Cell, levels),
	}

	for level := 0; level < levels; level++ {
		grid := make([][]Cell, height)
		for y := 0; y < height; y++ {
			grid[y] = make([]Cell, width)
			for x := 0; x < width; x++ {
				grid[y][x] = Cell{
					X:     x,
					Y:     y,
					Level: level,
					Walls: Walls{North: true, South: true, East: true, West: true},
				}
			}
		}
		m.Levels[level] = grid

		m.carveLevel(level)

		// 出口与钥匙各随机放一格，允许重合
		exit := m.At(level, rand.Intn(width), rand.Intn(height))
		exit.HasExit = true
		key := m.At(level, rand.Intn(width), rand.Intn(height))
		key.HasKey = true
	}

	return m, nil
}

// carveLevel 随机游走打通一层的墙壁
func (m *Maze) carveLevel(level int) {
	x, y := 0, 0
	visited := make(map[[2]int]bool, m.Width*m.Height)

	for len(visited) < m.Width*m.Height {
		visited[[2]int{x, y}] = true

		var directions []Direction
		if x > 0 {
			directions = append(directions, West)
		}
		if x < m.Width-1 {
			directions = append(directions, East)
		}
		if y > 0 {
			directions = append(directions, North)
		}
		if y < m.Height-1 {
			directions = append(directions, South)
		}

		switch directions[rand.Intn(len(directions))] {
		case North:
			m.At(level, x, y).Walls.North = false
			m.At(level, x, y-1).Walls.South = false
			y--
		case South:
			m.At(level, x, y).Walls.South = false
			m.At(level, x, y+1).Walls.North = false
			y++
		case East:
			m.At(level, x, y).Walls.East = false
			m.At(level, x+1, y).Walls.West = false
			x++
		case West:
			m.At(level, x, y).Walls.West = false
			m.At(level, x-1, y).Walls.East = false
			x--
		}
	}
}

// At 返回指定格子的指针，越界返回 nil
func (m *Maze) At(level, x, y int) *Cell {
	if level < 0 || level >= len(m.Levels) {
		return nil
	}
	if y < 0 || y >= m.Height || x < 0 || x >= m.Width {
		return nil
	}
	return &m.Levels[level][y][x]
}

// InBounds 判断坐标是否在迷宫内
func (m *Maze) InBounds(p Position) bool {
	return m.At(p.Level, p.X, p.Y) != nil
}

// Step 尝试从 p 向 dir 移动一步。
// 只有当前格子在该方向没有墙、且目标在边界内时才移动；
// 否则返回原位置和 false。层数不会改变。
func (m *Maze) Step(p Position, dir Direction) (Position, bool) {
	cell := m.At(p.Level, p.X, p.Y)
	if cell == nil {
		return p, false
	}

	next := p
	switch dir {
	case North:
		if !cell.Walls.North && p.Y > 0 {
			next.Y--
		}
	case South:
		if !cell.Walls.South && p.Y < m.Height-1 {
			next.Y++
		}
	case East:
		if !cell.Walls.East && p.X < m.Width-1 {
			next.X++
		}
	case West:
		if !cell.Walls.West && p.X > 0 {
			next.X--
		}
	}

	return next, next != p
}

// Clone 返回迷宫的深拷贝，用于生成对外快照
func (m *Maze) Clone() *Maze {
	c := &Maze{
		Width:  m.Width,
		Height: m.Height,
		Levels: make([][][]Cell, len(m.Levels)),
	}
	for level, grid := range m.Levels {
		c.Levels[level] = make([][]Cell, len(grid))
		for y, row := range grid {
			c.Levels[level][y] = make([]Cell, len(row))
			copy(c.Levels[level][y], row)
		}
	}
	return c
}
