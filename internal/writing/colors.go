package writing

// ProjectColors is the fixed display palette. Colors are assigned to
// projects deterministically by creation order, preferring hues not
// already in use.
var ProjectColors = []string{
	"#4a7fa8", // steel blue
	"#7a4a2a", // warm brown
	"#5a8f5e", // muted green
	"#8a3a6a", // dusty plum
	"#c08040", // warm amber
	"#3d7a8a", // slate teal
	"#7a3a3a", // muted brick red
	"#4a6a40", // deep olive
	"#6a5a90", // muted violet
	"#8a6a30", // golden tan
}

// pickColor returns the first palette color not used by any existing
// project, falling back to cycling the palette by project count.
func pickColor(existing []Project) string {
	used := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		used[p.Color] = struct{}{}
	}
	for _, c := range ProjectColors {
		if _, taken := used[c]; !taken {
			return c
		}
	}
	return ProjectColors[len(existing)%len(ProjectColors)]
}
