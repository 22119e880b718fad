package cli

const statusTemplate = `=== Cache Status ===

User:       {{.User}}
{{- if .Cached }}
Contacts:   {{.Contacts}}{{ if .MemoryOnly }} (memory only){{ end }}
{{- else }}
Contacts:   not cached
{{- end }}
Last sync:  {{.LastSync}}
Needs sync: {{ if .NeedsSync }}yes{{ else }}no{{ end }}
{{- if .HasUsage }}
Storage:    {{.Used}} bytes used{{ if .Quota }} of {{.Quota}}{{ end }}
{{- end }}
`
