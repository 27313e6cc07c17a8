package layout

// TM: time-model mining forecast; one row per runner.
var TM = register(&Layout{
	Kind:   "TM",
	Length: 35 + 15*18 + 2,
	Fields: append(raceHeader(),
		Field{Name: "MakeHM", Off: 27, Len: 8, Typ: Text},
	),
	Blocks: []*Block{
		{
			Off: 35, Stride: 15, Count: 18,
			Fields: []Field{
				{Name: "Umaban", Off: 0, Len: 2, Typ: Text},
				{Name: "DMTime", Off: 2, Len: 5, Typ: Real, Scale: 1},
				{Name: "DMGosaP", Off: 7, Len: 4, Typ: Real, Scale: 1},
				{Name: "DMGosaM", Off: 11, Len: 4, Typ: Real, Scale: 1},
			},
		},
	},
	Key: append(raceKey(), "Umaban"),
})

// DM: matchup-model mining forecast; one row per runner.
var DM = register(&Layout{
	Kind:   "DM",
	Length: 35 + 7*18 + 2,
	Fields: append(raceHeader(),
		Field{Name: "MakeHM", Off: 27, Len: 8, Typ: Text},
	),
	Blocks: []*Block{
		{
			Off: 35, Stride: 7, Count: 18,
			Fields: []Field{
				{Name: "Umaban", Off: 0, Len: 2, Typ: Text},
				{Name: "DMScore", Off: 2, Len: 5, Typ: Real, Scale: 1},
			},
		},
	},
	Key: append(raceKey(), "Umaban"),
})

// BT: sire-line master.
var BT = register(&Layout{
	Kind:   "BT",
	Length: 7000,
	Fields: []Field{
		{Name: "RecordSpec", Off: 0, Len: 2, Typ: Text},
		{Name: "DataKubun", Off: 2, Len: 1, Typ: Text},
		{Name: "MakeDate", Off: 3, Len: 8, Typ: Text},
		{Name: "HansyokuNum", Off: 11, Len: 10, Typ: Text},
		{Name: "KeitoID", Off: 21, Len: 30, Typ: Text},
		{Name: "KeitoName", Off: 51, Len: 36, Typ: Text},
		{Name: "KeitoEx", Off: 87, Len: 6800, Typ: Text},
	},
	Key: []string{"HansyokuNum"},
})

// HY: horse-name origin.
var HY = register(&Layout{
	Kind:   "HY",
	Length: 130,
	Fields: []Field{
		{Name: "RecordSpec", Off: 0, Len: 2, Typ: Text},
		{Name: "DataKubun", Off: 2, Len: 1, Typ: Text},
		{Name: "MakeDate", Off: 3, Len: 8, Typ: Text},
		{Name: "KettoNum", Off: 11, Len: 10, Typ: Text},
		{Name: "Bamei", Off: 21, Len: 36, Typ: Text},
		{Name: "Origin", Off: 57, Len: 64, Typ: Text},
	},
	Key: []string{"KettoNum"},
})

// HS: hill-course training session.
var HS = register(&Layout{
	Kind:   "HS",
	Length: 60,
	Fields: []Field{
		{Name: "RecordSpec", Off: 0, Len: 2, Typ: Text},
		{Name: "DataKubun", Off: 2, Len: 1, Typ: Text},
		{Name: "MakeDate", Off: 3, Len: 8, Typ: Text},
		{Name: "TresenKubun", Off: 11, Len: 1, Typ: Text},
		{Name: "ChokyoDate", Off: 12, Len: 8, Typ: Text},
		{Name: "ChokyoTime", Off: 20, Len: 4, Typ: Text},
		{Name: "KettoNum", Off: 24, Len: 10, Typ: Text},
		{Name: "HaronTime4", Off: 34, Len: 4, Typ: Real, Scale: 1},
		{Name: "LapTime4", Off: 38, Len: 3, Typ: Real, Scale: 1},
		{Name: "LapTime3", Off: 41, Len: 3, Typ: Real, Scale: 1},
		{Name: "LapTime2", Off: 44, Len: 3, Typ: Real, Scale: 1},
		{Name: "LapTime1", Off: 47, Len: 3, Typ: Real, Scale: 1},
	},
	Key: []string{"KettoNum", "ChokyoDate", "ChokyoTime"},
})

// WC: woodchip-course training session.
var WC = register(&Layout{
	Kind:   "WC",
	Length: 80,
	Fields: []Field{
		{Name: "RecordSpec", Off: 0, Len: 2, Typ: Text},
		{Name: "DataKubun", Off: 2, Len: 1, Typ: Text},
		{Name: "MakeDate", Off: 3, Len: 8, Typ: Text},
		{Name: "TresenKubun", Off: 11, Len: 1, Typ: Text},
		{Name: "ChokyoDate", Off: 12, Len: 8, Typ: Text},
		{Name: "ChokyoTime", Off: 20, Len: 4, Typ: Text},
		{Name: "KettoNum", Off: 24, Len: 10, Typ: Text},
		{Name: "Course", Off: 34, Len: 1, Typ: Text},
		{Name: "BabaMawari", Off: 35, Len: 1, Typ: Text},
		{Name: "HaronTime6", Off: 36, Len: 4, Typ: Real, Scale: 1},
		{Name: "LapTime6", Off: 40, Len: 3, Typ: Real, Scale: 1},
		{Name: "LapTime5", Off: 43, Len: 3, Typ: Real, Scale: 1},
		{Name: "LapTime4", Off: 46, Len: 3, Typ: Real, Scale: 1},
		{Name: "LapTime3", Off: 49, Len: 3, Typ: Real, Scale: 1},
		{Name: "LapTime2", Off: 52, Len: 3, Typ: Real, Scale: 1},
		{Name: "LapTime1", Off: 55, Len: 3, Typ: Real, Scale: 1},
	},
	Key: []string{"KettoNum", "ChokyoDate", "ChokyoTime"},
})

// CK: per-runner career record counts at declaration time.
var CK = register(&Layout{
	Kind:   "CK",
	Length: 200,
	Fields: func() []Field {
		f := raceHeader()
		f = append(f,
			Field{Name: "KettoNum", Off: 27, Len: 10, Typ: Text},
			Field{Name: "Bamei", Off: 37, Len: 36, Typ: Text},
		)
		f = numbered(f, "ChakuKaisuAll", 73, 3, 6, Int, 0)
		f = numbered(f, "ChakuKaisuSiba", 91, 3, 6, Int, 0)
		f = numbered(f, "ChakuKaisuDirt", 109, 3, 6, Int, 0)
		f = numbered(f, "ChakuKaisuJyo", 127, 3, 6, Int, 0)
		f = numbered(f, "ChakuKaisuKyori", 145, 3, 6, Int, 0)
		return f
	}(),
	Key: append(raceKey(), "KettoNum"),
})
