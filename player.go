package main

// Player is a tagged variant over the two seat kinds. A human seat
// carries only a pending-move slot filled from the outside; an AI seat
// carries its agent.
type Player struct {
	Kind  PlayerKind
	Agent *AIPlayer

	pending     bool
	pendingMove Move
}

func NewHumanSeat() *Player {
	return &Player{Kind: PlayerHuman}
}

func NewAISeat(agent *AIPlayer) *Player {
	return &Player{Kind: PlayerAI, Agent: agent}
}

func (p *Player) IsHuman() bool {
	return p.Kind == PlayerHuman
}

func (p *Player) SetPendingMove(move Move) {
	p.pendingMove = move
	p.pending = true
}

func (p *Player) HasPendingMove() bool {
	return p.pending
}

func (p *Player) TakePendingMove() Move {
	p.pending = false
	return p.pendingMove
}
