package credentials

import "strconv"

type parts struct {
	first, last string
	fi, li      string
	n, rnd      int
	year        int
}

// patterns is indexed by row position modulo its length.
var patterns = []func(p parts) string{
	func(p parts) string { return p.first + "." + p.last },
	func(p parts) string { return p.first + p.last },
	func(p parts) string { return p.fi + "." + p.last },
	func(p parts) string { return p.fi + p.last },
	func(p parts) string { return p.first + "." + p.li },
	func(p parts) string { return p.first + p.li },
	func(p parts) string { return p.first + "_" + p.last },
	func(p parts) string { return p.first + "-" + p.last },
	func(p parts) string { return p.last + "." + p.first },
	func(p parts) string { return p.last + p.first },
	func(p parts) string { return p.last + "." + p.fi },
	func(p parts) string { return p.last + p.fi },
	func(p parts) string { return p.first },
	func(p parts) string { return p.last },
	func(p parts) string { return p.fi + p.li },
	func(p parts) string { return p.first + "." + p.last + itoa(p.n) },
	func(p parts) string { return p.first + p.last + itoa(p.n) },
	func(p parts) string { return p.fi + p.last + itoa(p.n) },
	func(p parts) string { return p.first + "." + p.last + itoa(p.rnd) },
	func(p parts) string { return p.first + itoa(p.rnd) },
	func(p parts) string { return p.last + itoa(p.rnd) },
	func(p parts) string { return p.first + ".sales" },
	func(p parts) string { return p.first + ".support" },
	func(p parts) string { return p.first + "." + p.last + ".sales" },
	func(p parts) string { return p.first + "." + p.last + ".support" },
	func(p parts) string { return p.first + ".marketing" },
	func(p parts) string { return p.first + ".team" },
	func(p parts) string { return p.first + "." + p.last + itoa(p.year) },
	func(p parts) string { return p.first + itoa(p.year) },
	func(p parts) string { return p.fi + p.last + itoa(p.year) },
	func(p parts) string { return p.first + "_" + p.li + itoa(p.n) },
	func(p parts) string { return p.last + "_" + p.first + itoa(p.rnd) },
}

// PatternCount is the size of the login pattern table.
var PatternCount = len(patterns)

func itoa(n int) string { return strconv.Itoa(n) }
