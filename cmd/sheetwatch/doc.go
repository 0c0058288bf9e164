// Command sheetwatch is the datasheet analyzer CLI. The run command hosts
// the watch-folder daemon; the remaining commands inspect and manage the
// analysis store directly.
package main
