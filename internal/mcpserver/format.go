package mcpserver

// EntryFormat describes how diary entries are stored and what the tools
// expect, for LLM consumers.
const EntryFormat = `# Grimoire Entry Format

The diary is a single JSON object kept in ` + "`" + `Entries.json` + "`" + ` inside the data directory.
Keys are labels, values are entries, and key order is append order.

` + "```" + `json
{
    "Entry 1": {
        "Day": "Monday",
        "Time": "21:15:00",
        "Entry": "Dear diary, today was odd. #work"
    }
}
` + "```" + `

## Rules

1. **Unlock first.** Every entry tool fails with a locked error until the ` + "`" + `unlock` + "`" + `
   tool succeeds. The first unlock on a fresh diary sets the password.
2. **Append only.** Entries cannot be edited or deleted. Labels are assigned by the
   diary as ` + "`" + `Entry N` + "`" + ` and never reused.
3. **Day and Time** are stamped from the local clock when the entry is written.
4. **Content** is free text and may span several lines. Blank content is rejected.
5. **Tags** are words prefixed with ` + "`" + `#` + "`" + ` anywhere in the text. They are lowercased
   and used by search.
6. **Headline** is the first non-empty line, used in search results.
`
