package layout

// dayHeader is the header of records keyed by race day rather than race.
func dayHeader() []Field {
	return []Field{
		{Name: "RecordSpec", Off: 0, Len: 2, Typ: Text},
		{Name: "DataKubun", Off: 2, Len: 1, Typ: Text},
		{Name: "MakeDate", Off: 3, Len: 8, Typ: Text},
		{Name: "Year", Off: 11, Len: 4, Typ: Text},
		{Name: "MonthDay", Off: 15, Len: 4, Typ: Text},
		{Name: "JyoCD", Off: 19, Len: 2, Typ: Text},
		{Name: "Kaiji", Off: 21, Len: 2, Typ: Text},
		{Name: "Nichiji", Off: 23, Len: 2, Typ: Text},
	}
}

// YS: meeting schedule.
var YS = register(&Layout{
	Kind:   "YS",
	Length: 400,
	Fields: func() []Field {
		f := dayHeader()
		f = append(f,
			Field{Name: "YoubiCD", Off: 25, Len: 1, Typ: Text},
		)
		// Up to three graded races announced for the day.
		for i := 0; i < 3; i++ {
			base := 26 + i*73
			f = append(f,
				Field{Name: "TokuNum", Off: base, Len: 4, Typ: Text},
				Field{Name: "Hondai", Off: base + 4, Len: 60, Typ: Text},
				Field{Name: "Ryakusyo3", Off: base + 64, Len: 6, Typ: Text},
				Field{Name: "GradeCD", Off: base + 70, Len: 1, Typ: Text},
				Field{Name: "SyubetuCD", Off: base + 71, Len: 2, Typ: Text},
			)
		}
		return f
	}(),
	Key: []string{"Year", "MonthDay", "JyoCD"},
})

// TK: special-race registrations; one row per registered horse.
var TK = register(&Layout{
	Kind:   "TK",
	Length: 27 + 64 + 49*300,
	Fields: append(raceHeader(),
		Field{Name: "TokuNum", Off: 27, Len: 4, Typ: Text},
		Field{Name: "Hondai", Off: 31, Len: 60, Typ: Text},
	),
	Blocks: []*Block{
		{
			Off: 91, Stride: 49, Count: 300,
			Fields: []Field{
				{Name: "Num", Off: 0, Len: 3, Typ: Text},
				{Name: "KettoNum", Off: 3, Len: 10, Typ: Text},
				{Name: "Bamei", Off: 13, Len: 36, Typ: Text},
			},
		},
	},
	Key: append(raceKey(), "KettoNum"),
})

// CS: course description master.
var CS = register(&Layout{
	Kind:   "CS",
	Length: 6829,
	Fields: []Field{
		{Name: "RecordSpec", Off: 0, Len: 2, Typ: Text},
		{Name: "DataKubun", Off: 2, Len: 1, Typ: Text},
		{Name: "MakeDate", Off: 3, Len: 8, Typ: Text},
		{Name: "JyoCD", Off: 11, Len: 2, Typ: Text},
		{Name: "Kyori", Off: 13, Len: 4, Typ: Int},
		{Name: "TrackCD", Off: 17, Len: 2, Typ: Text},
		{Name: "KaishuDate", Off: 19, Len: 8, Typ: Text},
		{Name: "CourseEx", Off: 27, Len: 6800, Typ: Text},
	},
	Key: []string{"JyoCD", "Kyori", "TrackCD", "KaishuDate"},
})

// WE: weather and going report.
var WE = register(&Layout{
	Kind:   "WE",
	Length: 42,
	Fields: func() []Field {
		f := dayHeader()
		f = append(f,
			Field{Name: "HappyoTime", Off: 25, Len: 8, Typ: Text},
			Field{Name: "HenkoID", Off: 33, Len: 1, Typ: Text},
			Field{Name: "TenkoCD", Off: 34, Len: 1, Typ: Text},
			Field{Name: "SibaBabaCD", Off: 35, Len: 1, Typ: Text},
			Field{Name: "DirtBabaCD", Off: 36, Len: 1, Typ: Text},
			Field{Name: "TenkoCDBefore", Off: 37, Len: 1, Typ: Text},
			Field{Name: "SibaBabaCDBefore", Off: 38, Len: 1, Typ: Text},
			Field{Name: "DirtBabaCDBefore", Off: 39, Len: 1, Typ: Text},
		)
		return f
	}(),
	Key: []string{"Year", "MonthDay", "JyoCD", "HappyoTime"},
})

// WH: horse weights announced before the race; one row per runner.
var WH = register(&Layout{
	Kind:   "WH",
	Length: 35 + 9*18 + 2,
	Fields: append(raceHeader(),
		Field{Name: "HappyoTime", Off: 27, Len: 8, Typ: Text},
	),
	Blocks: []*Block{
		{
			Off: 35, Stride: 9, Count: 18,
			Fields: []Field{
				{Name: "Umaban", Off: 0, Len: 2, Typ: Text},
				{Name: "BaTaijyu", Off: 2, Len: 3, Typ: Int},
				{Name: "ZogenFugo", Off: 5, Len: 1, Typ: Text},
				{Name: "ZogenSa", Off: 6, Len: 3, Typ: Int},
			},
		},
	},
	Key: append(raceKey(), "Umaban"),
})

// AV: scratched or excluded runners announced after declaration.
var AV = register(&Layout{
	Kind:   "AV",
	Length: 90,
	Fields: append(raceHeader(),
		Field{Name: "HappyoTime", Off: 27, Len: 8, Typ: Text},
		Field{Name: "Umaban", Off: 35, Len: 2, Typ: Text},
		Field{Name: "KettoNum", Off: 37, Len: 10, Typ: Text},
		Field{Name: "Bamei", Off: 47, Len: 36, Typ: Text},
		Field{Name: "JiyuKubun", Off: 83, Len: 1, Typ: Text},
	),
	Key: append(raceKey(), "Umaban", "HappyoTime"),
})

// CC: course change notice.
var CC = register(&Layout{
	Kind:   "CC",
	Length: 50,
	Fields: append(raceHeader(),
		Field{Name: "HappyoTime", Off: 27, Len: 8, Typ: Text},
		Field{Name: "KyoriAfter", Off: 35, Len: 4, Typ: Int},
		Field{Name: "TrackCDAfter", Off: 39, Len: 2, Typ: Text},
		Field{Name: "KyoriBefore", Off: 41, Len: 4, Typ: Int},
		Field{Name: "TrackCDBefore", Off: 45, Len: 2, Typ: Text},
		Field{Name: "JiyuKubun", Off: 47, Len: 1, Typ: Text},
	),
	Key: append(raceKey(), "HappyoTime"),
})

// JC: jockey change notice.
var JC = register(&Layout{
	Kind:   "JC",
	Length: 80,
	Fields: append(raceHeader(),
		Field{Name: "HappyoTime", Off: 27, Len: 8, Typ: Text},
		Field{Name: "Umaban", Off: 35, Len: 2, Typ: Text},
		Field{Name: "Futan", Off: 37, Len: 3, Typ: Real, Scale: 1},
		Field{Name: "KisyuCode", Off: 40, Len: 5, Typ: Text},
		Field{Name: "KisyuName", Off: 45, Len: 8, Typ: Text},
		Field{Name: "MinaraiCD", Off: 53, Len: 1, Typ: Text},
		Field{Name: "FutanBefore", Off: 54, Len: 3, Typ: Real, Scale: 1},
		Field{Name: "KisyuCodeBefore", Off: 57, Len: 5, Typ: Text},
		Field{Name: "KisyuNameBefore", Off: 62, Len: 8, Typ: Text},
		Field{Name: "MinaraiCDBefore", Off: 70, Len: 1, Typ: Text},
	),
	Key: append(raceKey(), "Umaban", "HappyoTime"),
})

// TC: start-time change notice.
var TC = register(&Layout{
	Kind:   "TC",
	Length: 44,
	Fields: append(raceHeader(),
		Field{Name: "HappyoTime", Off: 27, Len: 8, Typ: Text},
		Field{Name: "HassoTimeAfter", Off: 35, Len: 4, Typ: Text},
		Field{Name: "HassoTimeBefore", Off: 39, Len: 4, Typ: Text},
	),
	Key: append(raceKey(), "HappyoTime"),
})

// HC: equipment change notice.
var HC = register(&Layout{
	Kind:   "HC",
	Length: 60,
	Fields: append(raceHeader(),
		Field{Name: "HappyoTime", Off: 27, Len: 8, Typ: Text},
		Field{Name: "Umaban", Off: 35, Len: 2, Typ: Text},
		Field{Name: "BaguKubun", Off: 37, Len: 1, Typ: Text},
		Field{Name: "BaguKubunBefore", Off: 38, Len: 1, Typ: Text},
	),
	Key: append(raceKey(), "Umaban", "HappyoTime"),
})
