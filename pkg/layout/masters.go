package layout

// masterHeader is the common header of master records, which carry no
// race identifier.
func masterHeader() []Field {
	return []Field{
		{Name: "RecordSpec", Off: 0, Len: 2, Typ: Text},
		{Name: "DataKubun", Off: 2, Len: 1, Typ: Text},
		{Name: "MakeDate", Off: 3, Len: 8, Typ: Text},
	}
}

// UM: horse master.
var UM = register(&Layout{
	Kind:   "UM",
	Length: 1100,
	Fields: func() []Field {
		f := masterHeader()
		f = append(f,
			Field{Name: "KettoNum", Off: 11, Len: 10, Typ: Text},
			Field{Name: "DelKubun", Off: 21, Len: 1, Typ: Text},
			Field{Name: "RegDate", Off: 22, Len: 8, Typ: Text},
			Field{Name: "DelDate", Off: 30, Len: 8, Typ: Text},
			Field{Name: "BirthDate", Off: 38, Len: 8, Typ: Text},
			Field{Name: "Bamei", Off: 46, Len: 36, Typ: Text},
			Field{Name: "BameiKana", Off: 82, Len: 36, Typ: Text},
			Field{Name: "BameiEng", Off: 118, Len: 60, Typ: Text},
			Field{Name: "ZaikyuFlag", Off: 178, Len: 1, Typ: Text},
			Field{Name: "UmaKigoCD", Off: 179, Len: 2, Typ: Text},
			Field{Name: "SexCD", Off: 181, Len: 1, Typ: Text},
			Field{Name: "HinsyuCD", Off: 182, Len: 1, Typ: Text},
			Field{Name: "KeiroCD", Off: 183, Len: 2, Typ: Text},
		)
		// Three generations of pedigree: registration number + name.
		for i := 0; i < 14; i++ {
			base := 185 + i*46
			f = append(f,
				Field{Name: "Ketto3InfoHansyokuNum", Off: base, Len: 10, Typ: Text},
				Field{Name: "Ketto3InfoBamei", Off: base + 10, Len: 36, Typ: Text},
			)
		}
		f = append(f,
			Field{Name: "TozaiCD", Off: 829, Len: 1, Typ: Text},
			Field{Name: "ChokyosiCode", Off: 830, Len: 5, Typ: Text},
			Field{Name: "ChokyosiRyakusyo", Off: 835, Len: 8, Typ: Text},
			Field{Name: "BreederCode", Off: 843, Len: 8, Typ: Text},
			Field{Name: "SanchiName", Off: 851, Len: 20, Typ: Text},
			Field{Name: "BanusiCode", Off: 871, Len: 6, Typ: Text},
			// Career aggregates maintained by the vendor.
			Field{Name: "RuikeiHonsyoHeichi", Off: 877, Len: 9, Typ: BigInt},
			Field{Name: "RuikeiHonsyoSyogai", Off: 886, Len: 9, Typ: BigInt},
			Field{Name: "RuikeiFukaHeichi", Off: 895, Len: 9, Typ: BigInt},
			Field{Name: "RuikeiFukaSyogai", Off: 904, Len: 9, Typ: BigInt},
			Field{Name: "RuikeiSyutokuHeichi", Off: 913, Len: 9, Typ: BigInt},
			Field{Name: "RuikeiSyutokuSyogai", Off: 922, Len: 9, Typ: BigInt},
		)
		// Finish-position counters: overall, turf, dirt, obstacle.
		f = numbered(f, "ChakuSogo", 931, 3, 6, Int, 0)
		f = numbered(f, "ChakuSiba", 949, 3, 6, Int, 0)
		f = numbered(f, "ChakuDirt", 967, 3, 6, Int, 0)
		f = numbered(f, "ChakuSyogai", 985, 3, 6, Int, 0)
		// Running-style tendency counters.
		f = numbered(f, "Kyakusitu", 1003, 3, 4, Int, 0)
		f = append(f,
			Field{Name: "RaceCount", Off: 1015, Len: 3, Typ: Int},
		)
		return f
	}(),
	Key: []string{"KettoNum"},
})

// KS: jockey master.
var KS = register(&Layout{
	Kind:   "KS",
	Length: 600,
	Fields: func() []Field {
		f := masterHeader()
		f = append(f,
			Field{Name: "KisyuCode", Off: 11, Len: 5, Typ: Text},
			Field{Name: "DelKubun", Off: 16, Len: 1, Typ: Text},
			Field{Name: "IssueDate", Off: 17, Len: 8, Typ: Text},
			Field{Name: "DelDate", Off: 25, Len: 8, Typ: Text},
			Field{Name: "BirthDate", Off: 33, Len: 8, Typ: Text},
			Field{Name: "KisyuName", Off: 41, Len: 34, Typ: Text},
			Field{Name: "KisyuNameKana", Off: 75, Len: 30, Typ: Text},
			Field{Name: "KisyuRyakusyo", Off: 105, Len: 8, Typ: Text},
			Field{Name: "KisyuNameEng", Off: 113, Len: 80, Typ: Text},
			Field{Name: "SexCD", Off: 193, Len: 1, Typ: Text},
			Field{Name: "SikakuCD", Off: 194, Len: 1, Typ: Text},
			Field{Name: "MinaraiCD", Off: 195, Len: 1, Typ: Text},
			Field{Name: "TozaiCD", Off: 196, Len: 1, Typ: Text},
			Field{Name: "Syotai", Off: 197, Len: 20, Typ: Text},
			Field{Name: "ChokyosiCode", Off: 217, Len: 5, Typ: Text},
			Field{Name: "ChokyosiRyakusyo", Off: 222, Len: 8, Typ: Text},
			// First mount and first win.
			Field{Name: "HatuKiJyoDate", Off: 230, Len: 8, Typ: Text},
			Field{Name: "HatuKiJyoKettoNum", Off: 238, Len: 10, Typ: Text},
			Field{Name: "HatuKiJyoBamei", Off: 248, Len: 36, Typ: Text},
			Field{Name: "HatuSyoriDate", Off: 284, Len: 8, Typ: Text},
			Field{Name: "HatuSyoriKettoNum", Off: 292, Len: 10, Typ: Text},
			Field{Name: "HatuSyoriBamei", Off: 302, Len: 36, Typ: Text},
		)
		// Two yearly result summaries: year, main and added prize money,
		// finish counts.
		for i := 0; i < 2; i++ {
			base := 338 + i*64
			f = append(f,
				Field{Name: "SeiSettoYear", Off: base, Len: 4, Typ: Text},
				Field{Name: "SeiHonsyokin", Off: base + 4, Len: 10, Typ: BigInt},
				Field{Name: "SeiFukasyokin", Off: base + 14, Len: 10, Typ: BigInt},
				Field{Name: "SeiChaku1", Off: base + 24, Len: 5, Typ: Int},
				Field{Name: "SeiChaku2", Off: base + 29, Len: 5, Typ: Int},
				Field{Name: "SeiChaku3", Off: base + 34, Len: 5, Typ: Int},
				Field{Name: "SeiChaku4", Off: base + 39, Len: 5, Typ: Int},
				Field{Name: "SeiChaku5", Off: base + 44, Len: 5, Typ: Int},
				Field{Name: "SeiChakuGai", Off: base + 49, Len: 5, Typ: Int},
			)
		}
		return f
	}(),
	Key: []string{"KisyuCode"},
})

// CH: trainer master.
var CH = register(&Layout{
	Kind:   "CH",
	Length: 450,
	Fields: func() []Field {
		f := masterHeader()
		f = append(f,
			Field{Name: "ChokyosiCode", Off: 11, Len: 5, Typ: Text},
			Field{Name: "DelKubun", Off: 16, Len: 1, Typ: Text},
			Field{Name: "IssueDate", Off: 17, Len: 8, Typ: Text},
			Field{Name: "DelDate", Off: 25, Len: 8, Typ: Text},
			Field{Name: "BirthDate", Off: 33, Len: 8, Typ: Text},
			Field{Name: "ChokyosiName", Off: 41, Len: 34, Typ: Text},
			Field{Name: "ChokyosiNameKana", Off: 75, Len: 30, Typ: Text},
			Field{Name: "ChokyosiRyakusyo", Off: 105, Len: 8, Typ: Text},
			Field{Name: "ChokyosiNameEng", Off: 113, Len: 80, Typ: Text},
			Field{Name: "SexCD", Off: 193, Len: 1, Typ: Text},
			Field{Name: "TozaiCD", Off: 194, Len: 1, Typ: Text},
			Field{Name: "Syotai", Off: 195, Len: 20, Typ: Text},
		)
		// Two yearly result summaries mirroring the jockey master.
		for i := 0; i < 2; i++ {
			base := 215 + i*64
			f = append(f,
				Field{Name: "SeiSettoYear", Off: base, Len: 4, Typ: Text},
				Field{Name: "SeiHonsyokin", Off: base + 4, Len: 10, Typ: BigInt},
				Field{Name: "SeiFukasyokin", Off: base + 14, Len: 10, Typ: BigInt},
				Field{Name: "SeiChaku1", Off: base + 24, Len: 5, Typ: Int},
				Field{Name: "SeiChaku2", Off: base + 29, Len: 5, Typ: Int},
				Field{Name: "SeiChaku3", Off: base + 34, Len: 5, Typ: Int},
				Field{Name: "SeiChaku4", Off: base + 39, Len: 5, Typ: Int},
				Field{Name: "SeiChaku5", Off: base + 44, Len: 5, Typ: Int},
				Field{Name: "SeiChakuGai", Off: base + 49, Len: 5, Typ: Int},
			)
		}
		return f
	}(),
	Key: []string{"ChokyosiCode"},
})

// BR: breeder master.
var BR = register(&Layout{
	Kind:   "BR",
	Length: 300,
	Fields: func() []Field {
		f := masterHeader()
		f = append(f,
			Field{Name: "BreederCode", Off: 11, Len: 8, Typ: Text},
			Field{Name: "BreederName", Off: 19, Len: 70, Typ: Text},
			Field{Name: "BreederNameKana", Off: 89, Len: 70, Typ: Text},
			Field{Name: "BreederNameEng", Off: 159, Len: 70, Typ: Text},
			Field{Name: "Address", Off: 229, Len: 20, Typ: Text},
		)
		return f
	}(),
	Key: []string{"BreederCode"},
})

// BN: owner master.
var BN = register(&Layout{
	Kind:   "BN",
	Length: 300,
	Fields: func() []Field {
		f := masterHeader()
		f = append(f,
			Field{Name: "BanusiCode", Off: 11, Len: 6, Typ: Text},
			Field{Name: "BanusiName", Off: 17, Len: 64, Typ: Text},
			Field{Name: "BanusiNameKana", Off: 81, Len: 50, Typ: Text},
			Field{Name: "BanusiNameEng", Off: 131, Len: 100, Typ: Text},
			Field{Name: "Fukusyoku", Off: 231, Len: 60, Typ: Text},
		)
		return f
	}(),
	Key: []string{"BanusiCode"},
})

// HN: breeding-horse master.
var HN = register(&Layout{
	Kind:   "HN",
	Length: 250,
	Fields: func() []Field {
		f := masterHeader()
		f = append(f,
			Field{Name: "HansyokuNum", Off: 11, Len: 10, Typ: Text},
			Field{Name: "KettoNum", Off: 21, Len: 10, Typ: Text},
			Field{Name: "DelKubun", Off: 31, Len: 1, Typ: Text},
			Field{Name: "Bamei", Off: 32, Len: 36, Typ: Text},
			Field{Name: "BameiKana", Off: 68, Len: 40, Typ: Text},
			Field{Name: "BirthYear", Off: 108, Len: 4, Typ: Text},
			Field{Name: "SexCD", Off: 112, Len: 1, Typ: Text},
			Field{Name: "HinsyuCD", Off: 113, Len: 1, Typ: Text},
			Field{Name: "KeiroCD", Off: 114, Len: 2, Typ: Text},
			Field{Name: "HansyokuMochiKubun", Off: 116, Len: 1, Typ: Text},
			Field{Name: "ImportYear", Off: 117, Len: 4, Typ: Text},
			Field{Name: "SanchiName", Off: 121, Len: 20, Typ: Text},
			Field{Name: "HansyokuFNum", Off: 141, Len: 10, Typ: Text},
			Field{Name: "HansyokuMNum", Off: 151, Len: 10, Typ: Text},
		)
		return f
	}(),
	Key: []string{"HansyokuNum"},
})

// SK: progeny master.
var SK = register(&Layout{
	Kind:   "SK",
	Length: 200,
	Fields: func() []Field {
		f := masterHeader()
		f = append(f,
			Field{Name: "KettoNum", Off: 11, Len: 10, Typ: Text},
			Field{Name: "BirthDate", Off: 21, Len: 8, Typ: Text},
			Field{Name: "SexCD", Off: 29, Len: 1, Typ: Text},
			Field{Name: "HinsyuCD", Off: 30, Len: 1, Typ: Text},
			Field{Name: "KeiroCD", Off: 31, Len: 2, Typ: Text},
			Field{Name: "SankuMochiKubun", Off: 33, Len: 1, Typ: Text},
			Field{Name: "ImportYear", Off: 34, Len: 4, Typ: Text},
			Field{Name: "BreederCode", Off: 38, Len: 8, Typ: Text},
			Field{Name: "SanchiName", Off: 46, Len: 20, Typ: Text},
			Field{Name: "HansyokuFNum", Off: 66, Len: 10, Typ: Text},
			Field{Name: "HansyokuMNum", Off: 76, Len: 10, Typ: Text},
		)
		return f
	}(),
	Key: []string{"KettoNum"},
})

// RC: course and track record master.
var RC = register(&Layout{
	Kind:   "RC",
	Length: 500,
	Fields: func() []Field {
		f := masterHeader()
		f = append(f,
			Field{Name: "RecInfoKubun", Off: 11, Len: 1, Typ: Text},
			Field{Name: "Year", Off: 12, Len: 4, Typ: Text},
			Field{Name: "MonthDay", Off: 16, Len: 4, Typ: Text},
			Field{Name: "JyoCD", Off: 20, Len: 2, Typ: Text},
			Field{Name: "Kaiji", Off: 22, Len: 2, Typ: Text},
			Field{Name: "Nichiji", Off: 24, Len: 2, Typ: Text},
			Field{Name: "RaceNum", Off: 26, Len: 2, Typ: Text},
			Field{Name: "TokuNum", Off: 28, Len: 4, Typ: Text},
			Field{Name: "Hondai", Off: 32, Len: 60, Typ: Text},
			Field{Name: "GradeCD", Off: 92, Len: 1, Typ: Text},
			Field{Name: "SyubetuCD", Off: 93, Len: 2, Typ: Text},
			Field{Name: "Kyori", Off: 95, Len: 4, Typ: Int},
			Field{Name: "TrackCD", Off: 99, Len: 2, Typ: Text},
			Field{Name: "RecKubun", Off: 101, Len: 1, Typ: Text},
			Field{Name: "RecTime", Off: 102, Len: 4, Typ: Real, Scale: 1},
			Field{Name: "TenkoCD", Off: 106, Len: 1, Typ: Text},
			Field{Name: "BabaCD", Off: 107, Len: 1, Typ: Text},
			Field{Name: "KettoNum", Off: 108, Len: 10, Typ: Text},
			Field{Name: "Bamei", Off: 118, Len: 36, Typ: Text},
			Field{Name: "UmaKigoCD", Off: 154, Len: 2, Typ: Text},
			Field{Name: "SexCD", Off: 156, Len: 1, Typ: Text},
			Field{Name: "ChokyosiCode", Off: 157, Len: 5, Typ: Text},
			Field{Name: "ChokyosiName", Off: 162, Len: 34, Typ: Text},
			Field{Name: "Futan", Off: 196, Len: 3, Typ: Real, Scale: 1},
			Field{Name: "KisyuCode", Off: 199, Len: 5, Typ: Text},
			Field{Name: "KisyuName", Off: 204, Len: 34, Typ: Text},
		)
		return f
	}(),
	Key: []string{"RecInfoKubun", "Year", "MonthDay", "JyoCD", "RaceNum", "KettoNum"},
})
