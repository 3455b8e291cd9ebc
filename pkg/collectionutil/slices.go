package collectionutil

// FlattenUnique appends each unique item in each list, in the order in which it first appears.
//
// Examples:
//   - FlattenUnique([]string{"2.12.0"}, []string{"2.12.0-alpha.0", "2.12.0"}) => []string{"2.12.0", "2.12.0-alpha.0"}
//   - FlattenUnique([]int{1, 2, 2}, []int{3, 4}) => []int{1, 2, 3, 4}
func FlattenUnique[E comparable](slices ...[]E) []E {
	alreadyInResult := make(map[E]struct{})

	var result []E
	for _, slice := range slices {
		for _, elem := range slice {
			if _, alreadyIn := alreadyInResult[elem]; !alreadyIn {
				result = append(result, elem)
				alreadyInResult[elem] = struct{}{}
			}
		}
	}
	return result
}
