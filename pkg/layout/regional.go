package layout

// Regional-feed layouts. Kinds whose byte layout matches the central feed
// reuse the central declaration; SE and HR differ on the wire and are
// overridden here. HA, NU and NC exist only on the regional feed.

// regSE: regional per-runner result. Same columns as the central SE where
// the data exists, at regional offsets; the regional record is shorter.
var regSE = registerRegional(&Layout{
	Kind:   "SE",
	Length: 440,
	Fields: func() []Field {
		f := raceHeader()
		f = append(f,
			Field{Name: "Wakuban", Off: 27, Len: 1, Typ: Text},
			Field{Name: "Umaban", Off: 28, Len: 2, Typ: Text},
			Field{Name: "KettoNum", Off: 30, Len: 10, Typ: Text},
			Field{Name: "Bamei", Off: 40, Len: 36, Typ: Text},
			Field{Name: "SexCD", Off: 76, Len: 1, Typ: Text},
			Field{Name: "KeiroCD", Off: 77, Len: 2, Typ: Text},
			Field{Name: "Barei", Off: 79, Len: 2, Typ: Int},
			Field{Name: "ChokyosiCode", Off: 81, Len: 5, Typ: Text},
			Field{Name: "ChokyosiRyakusyo", Off: 86, Len: 8, Typ: Text},
			Field{Name: "BanusiCode", Off: 94, Len: 6, Typ: Text},
			Field{Name: "BanusiName", Off: 100, Len: 64, Typ: Text},
			Field{Name: "Futan", Off: 164, Len: 3, Typ: Real, Scale: 1},
			Field{Name: "KisyuCode", Off: 167, Len: 5, Typ: Text},
			Field{Name: "KisyuRyakusyo", Off: 172, Len: 8, Typ: Text},
			Field{Name: "BaTaijyu", Off: 180, Len: 3, Typ: Int},
			Field{Name: "ZogenFugo", Off: 183, Len: 1, Typ: Text},
			Field{Name: "ZogenSa", Off: 184, Len: 3, Typ: Int},
			Field{Name: "IJyoCD", Off: 187, Len: 1, Typ: Text},
			Field{Name: "NyusenJyuni", Off: 188, Len: 2, Typ: Int},
			Field{Name: "KakuteiJyuni", Off: 190, Len: 2, Typ: Int},
			Field{Name: "Time", Off: 192, Len: 4, Typ: Real, Scale: 1},
			Field{Name: "ChakusaCD", Off: 196, Len: 3, Typ: Text},
			Field{Name: "Odds", Off: 199, Len: 4, Typ: Real, Scale: 1},
			Field{Name: "Ninki", Off: 203, Len: 2, Typ: Int},
			Field{Name: "Honsyokin", Off: 205, Len: 8, Typ: BigInt},
			Field{Name: "HaronTimeL3", Off: 213, Len: 3, Typ: Real, Scale: 1},
		)
		return f
	}(),
	Key: append(raceKey(), "Umaban"),
})

// regHR: regional payout record. Header plus a sale flag area followed by
// fixed 15-byte entries per bet type.
var regHR = registerRegional(&Layout{
	Kind:   "HR",
	Length: 1032,
	Fields: func() []Field {
		f := raceHeader()
		f = append(f,
			Field{Name: "TorokuTosu", Off: 27, Len: 2, Typ: Int},
			Field{Name: "SyussoTosu", Off: 29, Len: 2, Typ: Int},
			Field{Name: "HatsubaiFlag", Off: 31, Len: 1, Typ: Text},
		)
		sect := func(f []Field, name string, off, count int) []Field {
			for i := 0; i < count; i++ {
				base := off + i*15
				f = append(f,
					Field{Name: name + "Kumi", Off: base, Len: 2, Typ: Text},
					Field{Name: name + "Pay", Off: base + 2, Len: 13, Typ: BigInt},
				)
			}
			return f
		}
		f = sect(f, "Tansyo", 63, 2)
		f = sect(f, "Fukusyo", 93, 3)
		f = sect(f, "Wakuren", 138, 3)
		f = sect(f, "Umaren", 183, 3)
		f = sect(f, "Wide", 228, 7)
		f = sect(f, "Umatan", 333, 6)
		f = sect(f, "Sanrenpuku", 423, 3)
		f = sect(f, "Sanrentan", 468, 6)
		f = append(f, Field{Name: "PayTotal", Off: 558, Len: 15, Typ: BigInt})
		return f
	}(),
	Key: raceKey(),
})

// HA: regional payout confirmation, one row per winning combination.
var HA = registerRegional(&Layout{
	Kind:   "HA",
	Length: 63 + 15*60 + 15,
	Fields: append(raceHeader(),
		Field{Name: "TorokuTosu", Off: 27, Len: 2, Typ: Int},
		Field{Name: "SyussoTosu", Off: 29, Len: 2, Typ: Int},
		Field{Name: "HatsubaiFlag", Off: 31, Len: 1, Typ: Text},
		Field{Name: "PayTotal", Off: 963, Len: 15, Typ: BigInt},
	),
	Blocks: []*Block{
		{
			Off: 63, Stride: 15, Count: 60,
			Fields: []Field{
				{Name: "Kumi", Off: 0, Len: 2, Typ: Text},
				{Name: "Pay", Off: 2, Len: 13, Typ: BigInt},
			},
		},
	},
	Key: append(raceKey(), "Kumi"),
})

// NU: regional runner registration.
var NU = registerRegional(&Layout{
	Kind:   "NU",
	Length: 64,
	Fields: []Field{
		{Name: "RecordSpec", Off: 0, Len: 2, Typ: Text},
		{Name: "DataKubun", Off: 2, Len: 1, Typ: Text},
		{Name: "MakeDate", Off: 3, Len: 8, Typ: Text},
		{Name: "KettoNum", Off: 11, Len: 10, Typ: Text},
		{Name: "RegNum", Off: 21, Len: 10, Typ: Text},
		{Name: "DelKubun", Off: 31, Len: 1, Typ: Text},
		{Name: "BirthDate", Off: 32, Len: 8, Typ: Text},
		{Name: "Bamei", Off: 40, Len: 24, Typ: Text},
	},
	Key: []string{"KettoNum"},
})

// NC: regional track master.
var NC = registerRegional(&Layout{
	Kind:   "NC",
	Length: 120,
	Fields: []Field{
		{Name: "RecordSpec", Off: 0, Len: 2, Typ: Text},
		{Name: "DataKubun", Off: 2, Len: 1, Typ: Text},
		{Name: "MakeDate", Off: 3, Len: 8, Typ: Text},
		{Name: "JyoCD", Off: 11, Len: 2, Typ: Text},
		{Name: "JyoName", Off: 13, Len: 40, Typ: Text},
		{Name: "JyoRyakusyo", Off: 53, Len: 8, Typ: Text},
		{Name: "KenCD", Off: 61, Len: 2, Typ: Text},
		{Name: "MawariCD", Off: 63, Len: 1, Typ: Text},
		{Name: "DirtKyoriMax", Off: 64, Len: 4, Typ: Int},
		{Name: "DelKubun", Off: 68, Len: 1, Typ: Text},
	},
	Key: []string{"JyoCD"},
})
