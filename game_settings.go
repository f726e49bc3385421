package main

type PlayerKind int

const (
	PlayerHuman PlayerKind = iota
	PlayerAI
)

type GameSettings struct {
	BoardSize              int        `json:"board_size"`
	WinLength              int        `json:"win_length"`
	BlackKind              PlayerKind `json:"-"`
	WhiteKind              PlayerKind `json:"-"`
	BlackStarts            bool       `json:"black_starts"`
	CaptureWinStones       int        `json:"capture_win_stones"`
	AiMoveDelayMs          int        `json:"ai_move_delay_ms"`
	ForbidDoubleThreeBlack bool       `json:"forbid_double_three_black"`
	ForbidDoubleThreeWhite bool       `json:"forbid_double_three_white"`
}

func DefaultGameSettings() GameSettings {
	return GameSettings{
		BoardSize:              19,
		WinLength:              5,
		BlackKind:              PlayerHuman,
		WhiteKind:              PlayerAI,
		BlackStarts:            true,
		CaptureWinStones:       10,
		AiMoveDelayMs:          150,
		ForbidDoubleThreeBlack: true,
		ForbidDoubleThreeWhite: false,
	}
}
