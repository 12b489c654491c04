package mcpserver

// NotebookFormatContract describes the on-disk notebook format and the
// conventions LLM consumers should follow when editing notebooks.
const NotebookFormatContract = `# Raido Notebook Format Contract

Every notebook handled by Raido is a Jupyter .ipynb file (nbformat 4).

## Structure

` + "```" + `json
{
  "nbformat": 4,
  "nbformat_minor": 5,
  "metadata": {
    "kernelspec": {
      "name": "python3",
      "display_name": "Python 3",
      "language": "python"
    }
  },
  "cells": [
    {
      "cell_type": "markdown",
      "metadata": {},
      "source": ["# Heading\n", "Body text.\n"]
    },
    {
      "cell_type": "code",
      "metadata": {},
      "source": ["print('hello')\n"],
      "outputs": [],
      "execution_count": null
    }
  ]
}
` + "```" + `

## Rules

1. **nbformat is always 4.** Other major versions are rejected by validation.
2. **Cell types** are exactly ` + "`" + `code` + "`" + `, ` + "`" + `markdown` + "`" + `, or ` + "`" + `raw` + "`" + `.
3. **Only code cells** carry ` + "`" + `outputs` + "`" + ` and ` + "`" + `execution_count` + "`" + `; on code
   cells both keys are always present (` + "`" + `[]` + "`" + ` and ` + "`" + `null` + "`" + ` when empty).
4. **Cell indices** are zero-based. Negative indices count from the end,
   Python style: ` + "`" + `-1` + "`" + ` is the last cell.
5. **Source** may be read as a single string; it is stored as a list of
   lines with trailing newlines preserved.
6. **File paths** end with ` + "`" + `.ipynb` + "`" + ` and use forward slashes.
7. **Encoding** is UTF-8 with a trailing newline after the closing brace.
8. **Clear outputs before committing.** Use ipynb_clear_outputs so diffs
   stay reviewable and no execution results leak into version control.
`
