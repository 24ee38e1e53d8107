package npm

import "strings"

// Format is the layout convention of a file.
type Format struct {
	Indent       string
	Newline      string
	FinalNewline bool
}

// DefaultFormat is what npm itself writes.
func DefaultFormat() Format {
	return Format{Indent: "  ", Newline: "\n", FinalNewline: true}
}

// Render serialises the node the way JSON.stringify(value, null, indent) does,
// with the given newline convention.
func Render(node *Node, format Format) string {
	var sb strings.Builder
	writeNode(&sb, node, format, 0)
	if format.FinalNewline {
		sb.WriteString(format.Newline)
	}
	return sb.String()
}

func writeNode(sb *strings.Builder, node *Node, format Format, depth int) {
	switch node.Kind {
	case KindObject:
		if len(node.Members) == 0 {
			sb.WriteString("{}")
			return
		}
		sb.WriteString("{")
		for i, member := range node.Members {
			if i > 0 {
				sb.WriteString(",")
			}
			writeLineStart(sb, format, depth+1)
			sb.WriteString(encodeString(member.Key))
			sb.WriteString(": ")
			writeNode(sb, member.Value, format, depth+1)
		}
		writeLineStart(sb, format, depth)
		sb.WriteString("}")
	case KindArray:
		if len(node.Items) == 0 {
			sb.WriteString("[]")
			return
		}
		sb.WriteString("[")
		for i, item := range node.Items {
			if i > 0 {
				sb.WriteString(",")
			}
			writeLineStart(sb, format, depth+1)
			writeNode(sb, item, format, depth+1)
		}
		writeLineStart(sb, format, depth)
		sb.WriteString("]")
	default:
		sb.WriteString(node.Raw)
	}
}

func writeLineStart(sb *strings.Builder, format Format, depth int) {
	sb.WriteString(format.Newline)
	sb.WriteString(strings.Repeat(format.Indent, depth))
}
