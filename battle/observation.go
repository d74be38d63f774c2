package battle

// BlockWidth is the number of features per battle position: HP ratio, the
// status one-hot and the type multi-hot.
const BlockWidth = 1 + NumStatuses + NumTypes

// ObservationWidth is the length of an observation vector: own slots a and b,
// then opponent slots a and b.
const ObservationWidth = 2 * NumSlots * BlockWidth

// EncodeObservation returns the fixed-length feature vector of b from the
// player's point of view. Empty or fainted positions encode as all zeros.
func EncodeObservation(b *DoubleBattle) []float64 {
	obs := make([]float64, ObservationWidth)
	for slot := 0; slot < NumSlots; slot++ {
		encodeBlock(obs[slot*BlockWidth:(slot+1)*BlockWidth], b.ActivePokemon(slot))
		off := (NumSlots + slot) * BlockWidth
		encodeBlock(obs[off:off+BlockWidth], b.OpponentActivePokemon(slot))
	}
	return obs
}

func encodeBlock(block []float64, p *Pokemon) {
	if p == nil {
		return
	}
	block[0] = p.HPRatio()
	if i := p.Status.encodingIndex(); i >= 0 {
		block[1+i] = 1
	}
	for _, t := range p.Types {
		if t >= 0 && int(t) < NumTypes {
			block[1+NumStatuses+int(t)] = 1
		}
	}
}
