// Package api serves a running game over HTTP.
//
// All access to the world goes through an Executor, which owns the world on a
// single goroutine. HTTP handlers and the websocket hub never touch the world
// directly: they submit closures to the executor and wait for them to finish.
//
// Routes:
//
//	GET  /api/map                 map size, date, game id
//	GET  /api/tiles/{index}       one tile by linear index
//	GET  /api/tiles/{x}/{y}       one tile by coordinates
//	GET  /api/towns               all towns
//	GET  /api/companies           all companies
//	POST /api/commands            run a command, test-only unless "exec" is set
//	GET  /api/savegame            the current game as a savegame file
//	GET  /ws                      stream of dirty tiles and track layout changes
//
// After every executed closure the executor collects the tiles marked dirty
// and the track layout notifications raised while it ran, and hands them to
// the hub, which broadcasts one JSON Update to every connected client.
package api
