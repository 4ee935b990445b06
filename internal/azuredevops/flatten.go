package azuredevops

import "strings"

// flattenIterations walks the iteration tree depth-first and collects
// the nodes a user can meaningfully assign work to: nodes carrying a
// date range, and childless nodes other than the root. The root node's
// name equals the project name and is stripped from display names.
func flattenIterations(root classificationNode, projectName string) []Iteration {
	var out []Iteration

	var walk func(node classificationNode, parentPath string)
	walk = func(node classificationNode, parentPath string) {
		currentPath := node.Name
		if parentPath != "" {
			currentPath = parentPath + `\` + node.Name
		}

		hasDates := node.Attributes != nil &&
			(node.Attributes.StartDate != nil || node.Attributes.FinishDate != nil)
		isLeaf := len(node.Children) == 0
		isRoot := parentPath == ""

		if hasDates || (isLeaf && !isRoot) {
			it := Iteration{
				ID:          node.Identifier,
				Name:        node.Name,
				Path:        currentPath,
				DisplayName: iterationDisplayName(currentPath, projectName),
			}
			if node.Attributes != nil {
				it.StartDate = node.Attributes.StartDate
				it.FinishDate = node.Attributes.FinishDate
			}
			out = append(out, it)
		}

		for _, child := range node.Children {
			walk(child, currentPath)
		}
	}

	walk(root, "")
	return out
}

// iterationDisplayName strips the leading project segment from a path
// and joins the rest with " / ". A single remaining segment is returned
// bare.
func iterationDisplayName(path, projectName string) string {
	segments := strings.Split(path, `\`)
	if len(segments) > 1 && segments[0] == projectName {
		segments = segments[1:]
	}
	return strings.Join(segments, " / ")
}
