package layout

// oddsHeader extends the race header with the announcement time and the
// field sizes shared by every odds and vote-count kind.
func oddsHeader() []Field {
	f := raceHeader()
	return append(f,
		Field{Name: "HappyoTime", Off: 27, Len: 8, Typ: Text},
		Field{Name: "TorokuTosu", Off: 35, Len: 2, Typ: Int},
		Field{Name: "SyussoTosu", Off: 37, Len: 2, Typ: Int},
	)
}

// O1: win, place and bracket-quinella odds share one 962-byte record:
// a 224-byte win array and a 336-byte place array run in parallel per
// runner, and a 324-byte bracket array follows with its own pair key.
// Win and place merge into one row per runner; the bracket family has a
// different cardinality and routes to its own table through the O1W sub
// layout below.
var O1 = register(&Layout{
	Kind:   "O1",
	Length: 962,
	Fields: append(oddsHeader(),
		Field{Name: "HatsubaiFlagTan", Off: 39, Len: 1, Typ: Text},
		Field{Name: "HatsubaiFlagFuku", Off: 40, Len: 1, Typ: Text},
		Field{Name: "HatsubaiFlagWakuren", Off: 41, Len: 1, Typ: Text},
		Field{Name: "FukuChakuBaraiKey", Off: 42, Len: 1, Typ: Text},
		Field{Name: "TanHyosuTotal", Off: 927, Len: 11, Typ: BigInt},
		Field{Name: "FukuHyosuTotal", Off: 938, Len: 11, Typ: BigInt},
	),
	Blocks: []*Block{
		{
			Off: 43, Stride: 8, Count: 28,
			Fields: []Field{
				{Name: "Umaban", Off: 0, Len: 2, Typ: Text},
				{Name: "TanOdds", Off: 2, Len: 4, Typ: Real, Scale: 1},
				{Name: "TanNinki", Off: 6, Len: 2, Typ: Int},
			},
		},
		{
			Off: 267, Stride: 12, Count: 28,
			Fields: []Field{
				{Name: "FukuUmaban", Off: 0, Len: 2, Typ: Text},
				{Name: "FukuOddsLow", Off: 2, Len: 4, Typ: Real, Scale: 1},
				{Name: "FukuOddsHigh", Off: 6, Len: 4, Typ: Real, Scale: 1},
				{Name: "FukuNinki", Off: 10, Len: 2, Typ: Int},
			},
		},
	},
	Sub: []*Layout{
		// O1W: the bracket-quinella family of the O1 record, 36 frame
		// pairs keyed by Kumi.
		{
			Kind:   "O1W",
			Length: 962,
			Fields: append(oddsHeader(),
				Field{Name: "HatsubaiFlagWakuren", Off: 41, Len: 1, Typ: Text},
				Field{Name: "WakurenHyosuTotal", Off: 949, Len: 11, Typ: BigInt},
			),
			Blocks: []*Block{
				{
					Off: 603, Stride: 9, Count: 36,
					Fields: []Field{
						{Name: "Kumi", Off: 0, Len: 2, Typ: Text},
						{Name: "Odds", Off: 2, Len: 5, Typ: Real, Scale: 1},
						{Name: "Ninki", Off: 7, Len: 2, Typ: Int},
					},
				},
			},
			Key: append(raceKey(), "Kumi"),
		},
	},
	Key: append(raceKey(), "Umaban"),
})

// saleFlagHeader extends the odds header with the combined sale flag the
// remaining odds kinds carry.
func saleFlagHeader() []Field {
	return append(oddsHeader(),
		Field{Name: "HatsubaiFlag", Off: 39, Len: 4, Typ: Text},
	)
}

// pairOdds builds a paired-combination odds layout (quinella, exacta).
func pairOdds(kind string, count int) *Layout {
	return &Layout{
		Kind:   kind,
		Length: 43 + 13*count + 11,
		Fields: append(saleFlagHeader(),
			Field{Name: "HyosuTotal", Off: 43 + 13*count, Len: 11, Typ: BigInt},
		),
		Blocks: []*Block{
			{
				Off: 43, Stride: 13, Count: count,
				Fields: []Field{
					{Name: "Kumi", Off: 0, Len: 4, Typ: Text},
					{Name: "Odds", Off: 4, Len: 6, Typ: Real, Scale: 1},
					{Name: "Ninki", Off: 10, Len: 3, Typ: Int},
				},
			},
		},
		Key: append(raceKey(), "Kumi"),
	}
}

// O2: quinella odds, 18C2 = 153 combinations.
var O2 = register(pairOdds("O2", 153))

// O3: wide odds carry a low/high range instead of a single value.
var O3 = register(&Layout{
	Kind:   "O3",
	Length: 43 + 17*153 + 11,
	Fields: append(saleFlagHeader(),
		Field{Name: "HyosuTotal", Off: 43 + 17*153, Len: 11, Typ: BigInt},
	),
	Blocks: []*Block{
		{
			Off: 43, Stride: 17, Count: 153,
			Fields: []Field{
				{Name: "Kumi", Off: 0, Len: 4, Typ: Text},
				{Name: "OddsLow", Off: 4, Len: 5, Typ: Real, Scale: 1},
				{Name: "OddsHigh", Off: 9, Len: 5, Typ: Real, Scale: 1},
				{Name: "Ninki", Off: 14, Len: 3, Typ: Int},
			},
		},
	},
	Key: append(raceKey(), "Kumi"),
})

// O4: exacta odds, 18P2 = 306 ordered pairs.
var O4 = register(pairOdds("O4", 306))

// O5: trio odds, 18C3 = 816 combinations.
var O5 = register(&Layout{
	Kind:   "O5",
	Length: 43 + 15*816 + 11,
	Fields: append(saleFlagHeader(),
		Field{Name: "HyosuTotal", Off: 43 + 15*816, Len: 11, Typ: BigInt},
	),
	Blocks: []*Block{
		{
			Off: 43, Stride: 15, Count: 816,
			Fields: []Field{
				{Name: "Kumi", Off: 0, Len: 6, Typ: Text},
				{Name: "Odds", Off: 6, Len: 6, Typ: Real, Scale: 1},
				{Name: "Ninki", Off: 12, Len: 3, Typ: Int},
			},
		},
	},
	Key: append(raceKey(), "Kumi"),
})

// O6: trifecta odds, 18P3 = 4896 ordered triples.
var O6 = register(&Layout{
	Kind:   "O6",
	Length: 43 + 17*4896 + 11,
	Fields: append(saleFlagHeader(),
		Field{Name: "HyosuTotal", Off: 43 + 17*4896, Len: 11, Typ: BigInt},
	),
	Blocks: []*Block{
		{
			Off: 43, Stride: 17, Count: 4896,
			Fields: []Field{
				{Name: "Kumi", Off: 0, Len: 6, Typ: Text},
				{Name: "Odds", Off: 6, Len: 7, Typ: Real, Scale: 1},
				{Name: "Ninki", Off: 13, Len: 4, Typ: Int},
			},
		},
	},
	Key: append(raceKey(), "Kumi"),
})

// H1: win/place vote counts per runner.
var H1 = register(&Layout{
	Kind:   "H1",
	Length: 43 + 28*28 + 22,
	Fields: append(saleFlagHeader(),
		Field{Name: "TanHyosuTotal", Off: 43 + 28*28, Len: 11, Typ: BigInt},
		Field{Name: "FukuHyosuTotal", Off: 43 + 28*28 + 11, Len: 11, Typ: BigInt},
	),
	Blocks: []*Block{
		{
			Off: 43, Stride: 28, Count: 28,
			Fields: []Field{
				{Name: "Umaban", Off: 0, Len: 2, Typ: Text},
				{Name: "TanHyosu", Off: 2, Len: 11, Typ: BigInt},
				{Name: "TanNinki", Off: 13, Len: 2, Typ: Int},
				{Name: "FukuHyosu", Off: 15, Len: 11, Typ: BigInt},
				{Name: "FukuNinki", Off: 26, Len: 2, Typ: Int},
			},
		},
	},
	Key: append(raceKey(), "Umaban"),
})

// H6: trifecta vote counts per ordered triple.
var H6 = register(&Layout{
	Kind:   "H6",
	Length: 43 + 21*4896 + 11,
	Fields: append(saleFlagHeader(),
		Field{Name: "HyosuTotal", Off: 43 + 21*4896, Len: 11, Typ: BigInt},
	),
	Blocks: []*Block{
		{
			Off: 43, Stride: 21, Count: 4896,
			Fields: []Field{
				{Name: "Kumi", Off: 0, Len: 6, Typ: Text},
				{Name: "Hyosu", Off: 6, Len: 11, Typ: BigInt},
				{Name: "Ninki", Off: 17, Len: 4, Typ: Int},
			},
		},
	},
	Key: append(raceKey(), "Kumi"),
})
