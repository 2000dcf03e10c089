package duration

import (
	"slices"
	"strconv"
	"strings"
)

// CompareNames orders symbol names so that vector elements sort by index:
// t[2] comes before t[10]. Other names compare bytewise.
func CompareNames(a, b string) int {
	abase, aidx, aok := splitIndex(a)
	bbase, bidx, bok := splitIndex(b)
	if aok && bok && abase == bbase {
		switch {
		case aidx < bidx:
			return -1
		case aidx > bidx:
			return 1
		default:
			return 0
		}
	}
	if aok {
		a = abase
	}
	if bok {
		b = bbase
	}
	if c := strings.Compare(a, b); c != 0 {
		return c
	}
	// Same base, only one indexed: the bare name first.
	switch {
	case !aok && bok:
		return -1
	case aok && !bok:
		return 1
	}
	return 0
}

// SortNames sorts names in place by CompareNames.
func SortNames(names []string) {
	slices.SortFunc(names, CompareNames)
}

// splitIndex parses "base[i]".
func splitIndex(name string) (string, int, bool) {
	if !strings.HasSuffix(name, "]") {
		return "", 0, false
	}
	open := strings.LastIndexByte(name, '[')
	if open <= 0 {
		return "", 0, false
	}
	idx, err := strconv.Atoi(name[open+1 : len(name)-1])
	if err != nil || idx < 0 {
		return "", 0, false
	}
	return name[:open], idx, true
}
