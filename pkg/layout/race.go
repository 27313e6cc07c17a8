package layout

import "fmt"

// raceHeader is the common header of race-level records: record kind,
// data class, creation date and the six-part race identifier.
func raceHeader() []Field {
	return []Field{
		{Name: "RecordSpec", Off: 0, Len: 2, Typ: Text},
		{Name: "DataKubun", Off: 2, Len: 1, Typ: Text},
		{Name: "MakeDate", Off: 3, Len: 8, Typ: Text},
		{Name: "Year", Off: 11, Len: 4, Typ: Text},
		{Name: "MonthDay", Off: 15, Len: 4, Typ: Text},
		{Name: "JyoCD", Off: 19, Len: 2, Typ: Text},
		{Name: "Kaiji", Off: 21, Len: 2, Typ: Text},
		{Name: "Nichiji", Off: 23, Len: 2, Typ: Text},
		{Name: "RaceNum", Off: 25, Len: 2, Typ: Text},
	}
}

func raceKey() []string {
	return []string{"Year", "MonthDay", "JyoCD", "Kaiji", "Nichiji", "RaceNum"}
}

// numbered appends count copies of a fixed-width field, suffixed 1..count.
func numbered(fields []Field, name string, off, width, count int, typ Type, scale int) []Field {
	for i := 0; i < count; i++ {
		fields = append(fields, Field{
			Name:  fmt.Sprintf("%s%d", name, i+1),
			Off:   off + i*width,
			Len:   width,
			Typ:   typ,
			Scale: scale,
		})
	}
	return fields
}

// RA: race definition.
var RA = register(&Layout{
	Kind:   "RA",
	Length: 1500,
	Fields: func() []Field {
		f := raceHeader()
		f = append(f,
			Field{Name: "YoubiCD", Off: 27, Len: 1, Typ: Text},
			Field{Name: "TokuNum", Off: 28, Len: 4, Typ: Text},
			Field{Name: "Hondai", Off: 32, Len: 60, Typ: Text},
			Field{Name: "Fukudai", Off: 92, Len: 60, Typ: Text},
			Field{Name: "Kakko", Off: 152, Len: 60, Typ: Text},
			Field{Name: "Ryakusyo10", Off: 212, Len: 20, Typ: Text},
			Field{Name: "Ryakusyo6", Off: 232, Len: 12, Typ: Text},
			Field{Name: "Ryakusyo3", Off: 244, Len: 6, Typ: Text},
			Field{Name: "GradeCD", Off: 250, Len: 1, Typ: Text},
			Field{Name: "SyubetuCD", Off: 251, Len: 2, Typ: Text},
			Field{Name: "KigoCD", Off: 253, Len: 3, Typ: Text},
			Field{Name: "JyuryoCD", Off: 256, Len: 1, Typ: Text},
			Field{Name: "JyokenCD1", Off: 257, Len: 3, Typ: Text},
			Field{Name: "JyokenCD2", Off: 260, Len: 3, Typ: Text},
			Field{Name: "JyokenCD3", Off: 263, Len: 3, Typ: Text},
			Field{Name: "JyokenCD4", Off: 266, Len: 3, Typ: Text},
			Field{Name: "JyokenCD5", Off: 269, Len: 3, Typ: Text},
			Field{Name: "Kyori", Off: 272, Len: 4, Typ: Int},
			Field{Name: "TrackCD", Off: 276, Len: 2, Typ: Text},
			Field{Name: "CourseKubunCD", Off: 278, Len: 2, Typ: Text},
		)
		f = numbered(f, "Honsyokin", 280, 8, 7, BigInt, 0)
		f = numbered(f, "Fukasyokin", 336, 8, 5, BigInt, 0)
		f = append(f,
			Field{Name: "HassoTime", Off: 376, Len: 4, Typ: Text},
			Field{Name: "TorokuTosu", Off: 380, Len: 2, Typ: Int},
			Field{Name: "SyussoTosu", Off: 382, Len: 2, Typ: Int},
			Field{Name: "NyusenTosu", Off: 384, Len: 2, Typ: Int},
			Field{Name: "TenkoCD", Off: 386, Len: 1, Typ: Text},
			Field{Name: "SibaBabaCD", Off: 387, Len: 1, Typ: Text},
			Field{Name: "DirtBabaCD", Off: 388, Len: 1, Typ: Text},
		)
		f = numbered(f, "LapTime", 389, 3, 25, Real, 1)
		f = append(f,
			Field{Name: "SyogaiMileTime", Off: 464, Len: 4, Typ: Real, Scale: 1},
			Field{Name: "HaronTimeS3", Off: 468, Len: 3, Typ: Real, Scale: 1},
			Field{Name: "HaronTimeS4", Off: 471, Len: 3, Typ: Real, Scale: 1},
			Field{Name: "HaronTimeL3", Off: 474, Len: 3, Typ: Real, Scale: 1},
			Field{Name: "HaronTimeL4", Off: 477, Len: 3, Typ: Real, Scale: 1},
			Field{Name: "CornerInfo1", Off: 480, Len: 72, Typ: Text},
			Field{Name: "CornerInfo2", Off: 552, Len: 72, Typ: Text},
			Field{Name: "CornerInfo3", Off: 624, Len: 72, Typ: Text},
			Field{Name: "CornerInfo4", Off: 696, Len: 72, Typ: Text},
			Field{Name: "RecordUpKubun", Off: 768, Len: 1, Typ: Text},
			// Entry-condition display names per age group.
			Field{Name: "JyokenName2", Off: 769, Len: 60, Typ: Text},
			Field{Name: "JyokenName3", Off: 829, Len: 60, Typ: Text},
			Field{Name: "JyokenName4", Off: 889, Len: 60, Typ: Text},
			Field{Name: "JyokenName5", Off: 949, Len: 60, Typ: Text},
			// Course record at race time.
			Field{Name: "CourseRecordTime", Off: 1009, Len: 4, Typ: Real, Scale: 1},
			Field{Name: "CourseRecordBamei", Off: 1013, Len: 36, Typ: Text},
			Field{Name: "CourseRecordDate", Off: 1049, Len: 8, Typ: Text},
			Field{Name: "RaceRecordTime", Off: 1057, Len: 4, Typ: Real, Scale: 1},
			Field{Name: "RaceRecordBamei", Off: 1061, Len: 36, Typ: Text},
			Field{Name: "RaceRecordDate", Off: 1097, Len: 8, Typ: Text},
			// Going and moisture detail published with the definition.
			Field{Name: "SibaShisu", Off: 1105, Len: 3, Typ: Real, Scale: 1},
			Field{Name: "DirtShisu", Off: 1108, Len: 3, Typ: Real, Scale: 1},
			Field{Name: "HassoTimeBefore", Off: 1111, Len: 4, Typ: Text},
			Field{Name: "KyoriBefore", Off: 1115, Len: 4, Typ: Int},
			Field{Name: "TrackCDBefore", Off: 1119, Len: 2, Typ: Text},
		)
		return f
	}(),
	Key: raceKey(),
})

// SE: per-runner race result.
var SE = register(&Layout{
	Kind:   "SE",
	Length: 555,
	Fields: func() []Field {
		f := raceHeader()
		f = append(f,
			Field{Name: "Wakuban", Off: 27, Len: 1, Typ: Text},
			Field{Name: "Umaban", Off: 28, Len: 2, Typ: Text},
			Field{Name: "KettoNum", Off: 30, Len: 10, Typ: Text},
			Field{Name: "Bamei", Off: 40, Len: 36, Typ: Text},
			Field{Name: "UmaKigoCD", Off: 76, Len: 2, Typ: Text},
			Field{Name: "SexCD", Off: 78, Len: 1, Typ: Text},
			Field{Name: "HinsyuCD", Off: 79, Len: 1, Typ: Text},
			Field{Name: "KeiroCD", Off: 80, Len: 2, Typ: Text},
			Field{Name: "Barei", Off: 82, Len: 2, Typ: Int},
			Field{Name: "TozaiCD", Off: 84, Len: 1, Typ: Text},
			Field{Name: "ChokyosiCode", Off: 85, Len: 5, Typ: Text},
			Field{Name: "ChokyosiRyakusyo", Off: 90, Len: 8, Typ: Text},
			Field{Name: "BanusiCode", Off: 98, Len: 6, Typ: Text},
			Field{Name: "BanusiName", Off: 104, Len: 64, Typ: Text},
			Field{Name: "Fukusyoku", Off: 168, Len: 60, Typ: Text},
			Field{Name: "Futan", Off: 228, Len: 3, Typ: Real, Scale: 1},
			Field{Name: "FutanBefore", Off: 231, Len: 3, Typ: Real, Scale: 1},
			Field{Name: "Blinker", Off: 234, Len: 1, Typ: Text},
			Field{Name: "KisyuCode", Off: 235, Len: 5, Typ: Text},
			Field{Name: "KisyuCodeBefore", Off: 240, Len: 5, Typ: Text},
			Field{Name: "KisyuRyakusyo", Off: 245, Len: 8, Typ: Text},
			Field{Name: "KisyuRyakusyoBefore", Off: 253, Len: 8, Typ: Text},
			Field{Name: "MinaraiCD", Off: 261, Len: 1, Typ: Text},
			Field{Name: "BaTaijyu", Off: 262, Len: 3, Typ: Int},
			Field{Name: "ZogenFugo", Off: 265, Len: 1, Typ: Text},
			Field{Name: "ZogenSa", Off: 266, Len: 3, Typ: Int},
			Field{Name: "IJyoCD", Off: 269, Len: 1, Typ: Text},
			Field{Name: "NyusenJyuni", Off: 270, Len: 2, Typ: Int},
			Field{Name: "KakuteiJyuni", Off: 272, Len: 2, Typ: Int},
			Field{Name: "DochakuKubun", Off: 274, Len: 1, Typ: Text},
			Field{Name: "DochakuTosu", Off: 275, Len: 1, Typ: Int},
			Field{Name: "Time", Off: 276, Len: 4, Typ: Real, Scale: 1},
			Field{Name: "ChakusaCD", Off: 280, Len: 3, Typ: Text},
			Field{Name: "ChakusaCDP", Off: 283, Len: 3, Typ: Text},
			Field{Name: "ChakusaCDPP", Off: 286, Len: 3, Typ: Text},
			Field{Name: "Jyuni1c", Off: 289, Len: 2, Typ: Int},
			Field{Name: "Jyuni2c", Off: 291, Len: 2, Typ: Int},
			Field{Name: "Jyuni3c", Off: 293, Len: 2, Typ: Int},
			Field{Name: "Jyuni4c", Off: 295, Len: 2, Typ: Int},
			Field{Name: "Odds", Off: 297, Len: 4, Typ: Real, Scale: 1},
			Field{Name: "Ninki", Off: 301, Len: 2, Typ: Int},
			Field{Name: "Honsyokin", Off: 303, Len: 8, Typ: BigInt},
			Field{Name: "Fukasyokin", Off: 311, Len: 8, Typ: BigInt},
			Field{Name: "HaronTimeL4", Off: 319, Len: 3, Typ: Real, Scale: 1},
			Field{Name: "HaronTimeL3", Off: 322, Len: 3, Typ: Real, Scale: 1},
		)
		// Pedigree references of the first three generations.
		f = numbered(f, "Ketto3InfoNum", 325, 10, 3, Text, 0)
		f = append(f,
			Field{Name: "TimeDiff", Off: 355, Len: 4, Typ: Real, Scale: 1},
			Field{Name: "RecordUpKubun", Off: 359, Len: 1, Typ: Text},
			Field{Name: "DMKubun", Off: 360, Len: 1, Typ: Text},
			Field{Name: "DMTime", Off: 361, Len: 5, Typ: Real, Scale: 1},
			Field{Name: "DMGosaP", Off: 366, Len: 4, Typ: Real, Scale: 1},
			Field{Name: "DMGosaM", Off: 370, Len: 4, Typ: Real, Scale: 1},
			Field{Name: "DMJyuni", Off: 374, Len: 2, Typ: Int},
			Field{Name: "KyakusituKubun", Off: 376, Len: 1, Typ: Text},
		)
		return f
	}(),
	Key: append(raceKey(), "Umaban"),
})

// HR: payouts for every bet type of one race.
var HR = register(&Layout{
	Kind:   "HR",
	Length: 1032,
	Fields: func() []Field {
		f := raceHeader()
		f = append(f,
			Field{Name: "TorokuTosu", Off: 27, Len: 2, Typ: Int},
			Field{Name: "SyussoTosu", Off: 29, Len: 2, Typ: Int},
			Field{Name: "FuseirituFlag", Off: 31, Len: 9, Typ: Text},
			Field{Name: "TokubaraiFlag", Off: 40, Len: 9, Typ: Text},
			Field{Name: "HenkanFlag", Off: 49, Len: 9, Typ: Text},
		)
		// One section per bet type; each entry: number, payout, popularity.
		sect := func(f []Field, name string, off, numW, count int) []Field {
			stride := numW + 9 + 2
			for i := 0; i < count; i++ {
				base := off + i*stride
				f = append(f,
					Field{Name: fmt.Sprintf("%sUmaban%d", name, i+1), Off: base, Len: numW, Typ: Text},
					Field{Name: fmt.Sprintf("%sPay%d", name, i+1), Off: base + numW, Len: 9, Typ: BigInt},
					Field{Name: fmt.Sprintf("%sNinki%d", name, i+1), Off: base + numW + 9, Len: 2, Typ: Int},
				)
			}
			return f
		}
		f = sect(f, "Tansyo", 58, 2, 3)
		f = sect(f, "Fukusyo", 97, 2, 5)
		f = sect(f, "Wakuren", 162, 2, 3)
		f = sect(f, "Umaren", 201, 4, 3)
		f = sect(f, "Wide", 246, 4, 7)
		f = sect(f, "Umatan", 351, 4, 6)
		f = sect(f, "Sanrenpuku", 441, 6, 3)
		f = sect(f, "Sanrentan", 492, 6, 6)
		return f
	}(),
	Key: raceKey(),
})

// JG: excluded / scratched runners.
var JG = register(&Layout{
	Kind:   "JG",
	Length: 80,
	Fields: func() []Field {
		f := raceHeader()
		f = append(f,
			Field{Name: "Umaban", Off: 27, Len: 2, Typ: Text},
			Field{Name: "KettoNum", Off: 29, Len: 10, Typ: Text},
			Field{Name: "Bamei", Off: 39, Len: 36, Typ: Text},
			Field{Name: "ShutsubaTohyoJun", Off: 75, Len: 3, Typ: Int},
			Field{Name: "JogaiKubun", Off: 78, Len: 1, Typ: Text},
		)
		return f
	}(),
	Key: append(raceKey(), "KettoNum"),
})

// WF: WIN5 carryover and payouts.
var WF = register(&Layout{
	Kind:   "WF",
	Length: 407,
	Fields: func() []Field {
		f := []Field{
			{Name: "RecordSpec", Off: 0, Len: 2, Typ: Text},
			{Name: "DataKubun", Off: 2, Len: 1, Typ: Text},
			{Name: "MakeDate", Off: 3, Len: 8, Typ: Text},
			{Name: "KaisaiDate", Off: 11, Len: 8, Typ: Text},
		}
		for i := 0; i < 5; i++ {
			base := 19 + i*8
			f = append(f,
				Field{Name: fmt.Sprintf("JyoCD%d", i+1), Off: base, Len: 2, Typ: Text},
				Field{Name: fmt.Sprintf("Kaiji%d", i+1), Off: base + 2, Len: 2, Typ: Text},
				Field{Name: fmt.Sprintf("Nichiji%d", i+1), Off: base + 4, Len: 2, Typ: Text},
				Field{Name: fmt.Sprintf("RaceNum%d", i+1), Off: base + 6, Len: 2, Typ: Text},
			)
		}
		f = append(f,
			Field{Name: "Hyosu", Off: 59, Len: 11, Typ: BigInt},
			Field{Name: "KityoHyosu", Off: 70, Len: 11, Typ: BigInt},
			Field{Name: "CarryoverShokin", Off: 81, Len: 15, Typ: BigInt},
			Field{Name: "CarryoverShokinNext", Off: 96, Len: 15, Typ: BigInt},
		)
		f = numbered(f, "UmabanComb", 111, 10, 5, Text, 0)
		f = append(f,
			Field{Name: "Pay", Off: 161, Len: 11, Typ: BigInt},
			Field{Name: "Tekichusu", Off: 172, Len: 10, Typ: BigInt},
		)
		return f
	}(),
	Key: []string{"KaisaiDate"},
})
