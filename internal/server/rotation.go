package server

// rotation is the receiver/source pairing for one game. Receiver i draws the
// prompt written by player (i+1) mod n, so nobody draws their own prompt
// once n >= 2. A single player receives their own prompt.
type rotation struct {
	targets    map[string]Target
	receiverOf map[string]string
}

func buildRotation(ids []string, prompts map[string]string, names map[string]string) rotation {
	rot := rotation{
		targets:    make(map[string]Target, len(ids)),
		receiverOf: make(map[string]string, len(ids)),
	}
	n := len(ids)
	for i, receiver := range ids {
		source := ids[(i+1)%n]
		rot.targets[receiver] = Target{
			Prompt:   prompts[source],
			FromID:   source,
			FromName: names[source],
		}
		rot.receiverOf[source] = receiver
	}
	return rot
}
