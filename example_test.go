package ffframe_test

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eleven-am/ffframe"
)

// ExampleNewStream opens a file, reads frames sequentially, and seeks by
// time. It does not run in CI (no test asset is bundled) and carries no
// Output: comment, so `go test` compiles it but does not execute or check
// it — a compile-checked usage sample in place of a separate CLI harness.
func ExampleNewStream() {
	ctx := context.Background()
	ffframe.SetLogLevel(slog.LevelWarn)

	stream, err := ffframe.NewStream(ctx, "video.mp4", ffframe.Options{
		BufferLength: 16,
	})
	if err != nil {
		fmt.Println("open:", err)
		return
	}
	defer stream.Close()

	frame, err := stream.GetNext(ctx)
	if err != nil {
		fmt.Println("get next:", err)
		return
	}
	fmt.Println("frame", frame.FrameNumber(), "at", frame.Timestamp(), "us")

	if err := stream.SeekTime(ctx, 5_000_000); err != nil {
		fmt.Println("seek:", err)
		return
	}
}

// ExampleManager shares one Stream across callers of the same path,
// releasing the underlying decoder once the last reference drops.
func ExampleManager() {
	ctx := context.Background()
	mgr := ffframe.NewManager(ffframe.Options{BufferLength: 8})

	a, err := mgr.Acquire(ctx, "video.mp4")
	if err != nil {
		fmt.Println("acquire:", err)
		return
	}
	b, err := mgr.Acquire(ctx, "video.mp4")
	if err != nil {
		fmt.Println("acquire:", err)
		return
	}
	fmt.Println("shared:", a == b)

	_ = mgr.Release("video.mp4")
	_ = mgr.Release("video.mp4")
}
