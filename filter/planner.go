package filter

// Partition is the result of PartitionWithBitmapSupport (§4.4): the
// bitmap-satisfiable conjunction and the residual conjunction, either of
// which may be nil.
type Partition struct {
	BitmapPart   *Filter // nil if no conjunct is bitmap-satisfiable
	ResidualPart *Filter // nil if every conjunct was absorbed into BitmapPart
}

// PartitionWithBitmapSupport normalizes f to CNF and splits its top-level
// conjuncts into a bitmap-evaluable part and a residual part (§4.4,
// steps 1-3). Returns an error only if CNF expansion overflows
// MaxConjuncts.
func PartitionWithBitmapSupport(f *Filter, src ColumnSource) (Partition, error) {
	if f == nil {
		return Partition{}, nil
	}
	conjuncts, err := ToCNF(f)
	if err != nil {
		return Partition{}, err
	}
	var bitmapConjuncts, residualConjuncts []*Filter
	for _, c := range conjuncts {
		if supportsBitmap(c, src) {
			bitmapConjuncts = append(bitmapConjuncts, c)
		} else {
			residualConjuncts = append(residualConjuncts, c)
		}
	}
	return Partition{
		BitmapPart:   andOrNil(bitmapConjuncts),
		ResidualPart: andOrNil(residualConjuncts),
	}, nil
}

func andOrNil(fs []*Filter) *Filter {
	switch len(fs) {
	case 0:
		return nil
	case 1:
		return fs[0]
	default:
		return And(fs...)
	}
}
