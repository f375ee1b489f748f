package model

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// setOptional copies the value so the record never aliases the patch.
func setOptional[T any](dst **T, v *T) {
	if v == nil {
		return
	}
	cp := *v
	*dst = &cp
}
