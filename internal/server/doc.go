// Package server exposes parsed phone dumps over HTTP.
//
// The server is a JSON API over a directory of Android dump files, one
// "<name>.txt" per device. Dumps parse lazily on first access and stay
// cached for the life of the process (plus the on-disk sidecar cache the
// android package maintains).
//
// # Endpoints
//
//	GET /api/dumps                          list available dumps
//	GET /api/sections?dump=N                parsed section names
//	GET /api/apps?dump=N&filter=F           app ids (all|system|offstore)
//	GET /api/app?dump=N&app=ID              app metadata
//	GET /api/report?dump=N&app=ID           full permission report
//	GET /ws/parse?dump=N                    websocket parse-progress stream
//
// The websocket stream emits one JSON event per parsed section, a
// "cached" event when the sidecar cache short-circuits the parse, and a
// terminal "done" event with the section list.
//
// # Usage Example
//
//	srv, err := server.New(&server.Config{
//	    Host:           "127.0.0.1",
//	    Port:           8080,
//	    DumpDir:        "dumps",
//	    PermissionsCSV: "android_permissions.csv",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(srv.Start())
//
// # Graceful Shutdown
//
// Start blocks until SIGINT or SIGTERM, then drains in-flight requests
// with a 10 second deadline.
//
// # Thread Safety
//
// The server is fully concurrent; the dump cache is guarded by a mutex
// and each parsed dump is read-only after construction.
package server
