package genetic

// Decoder maps an evolvable gene vector to the phenotype it describes
type Decoder[G Solution, P any] interface {
	Decode(G) P
}
