package containerd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"
	"time"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/core/images"
	transferimage "github.com/containerd/containerd/v2/core/transfer/image"
	"github.com/containerd/containerd/v2/core/transfer/registry"
	"github.com/containerd/containerd/v2/pkg/cio"
	"github.com/containerd/containerd/v2/pkg/namespaces"
	"github.com/containerd/containerd/v2/pkg/oci"
	"github.com/containerd/errdefs"
	"github.com/containerd/platforms"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/opencontainers/runtime-spec/specs-go"
	"pkt.systems/pslog"

	"github.com/serverwave/serverwave/schema"
)

const defaultPullTimeout = 5 * time.Minute

// Mount binds a host directory into the server container.
type Mount struct {
	Source   string
	Target   string
	ReadOnly bool
}

// ServerSpec describes a game server container to provision.
type ServerSpec struct {
	ID       schema.ServerID
	Image    string
	GameType schema.GameType
	Env      map[string]string
	Command  []string
	DataDir  string
	Mounts   []Mount
	// Installing marks the container as running its install script. Status
	// reports installing instead of running while the label is set.
	Installing bool
}

// StartServer ensures the container exists and its task runs, with its IO
// captured from process start. Safe to call on an already-running server.
func (s *Supervisor) StartServer(ctx context.Context, spec ServerSpec) error {
	if err := schema.ValidateServerID(spec.ID); err != nil {
		return err
	}
	if strings.TrimSpace(spec.Image) == "" {
		return errors.New("server image is required")
	}
	log := pslog.Ctx(ctx).With("runtime", "containerd", "server", spec.ID, "image", spec.Image)
	log.Info("server start requested")
	ctx = namespaces.WithNamespace(ctx, s.namespace)

	container, err := s.client.LoadContainer(ctx, string(spec.ID))
	if err != nil {
		if !errdefs.IsNotFound(err) {
			return err
		}
		image, err := s.ensureImage(ctx, spec.Image)
		if err != nil {
			return err
		}
		labels := map[string]string{
			labelManaged: "true",
			labelGame:    string(spec.GameType),
		}
		if spec.Installing {
			labels[labelPhase] = phaseInstalling
		}
		container, err = s.client.NewContainer(ctx, string(spec.ID),
			containerd.WithImage(image),
			containerd.WithContainerLabels(labels),
			containerd.WithNewSnapshot(string(spec.ID)+"-snapshot", image),
			containerd.WithNewSpec(serverSpecOpts(image, spec)...),
		)
		if err != nil {
			log.Warn("server container create failed", "err", err)
			return err
		}
		log.Info("server container created", "id", container.ID())
	}

	capture := s.ensureCapture(spec.ID)
	task, err := container.Task(ctx, nil)
	if err != nil {
		if !errdefs.IsNotFound(err) {
			return err
		}
		stdinR, stdinW := io.Pipe()
		task, err = container.NewTask(ctx, cio.NewCreator(cio.WithStreams(stdinR, capture.stdout, capture.stderr)))
		if err != nil {
			_ = stdinW.Close()
			log.Warn("server task create failed", "err", err)
			return err
		}
		if err := task.Start(ctx); err != nil {
			_ = stdinW.Close()
			_, _ = task.Delete(ctx)
			log.Warn("server task start failed", "err", err)
			return err
		}
		capture.setStdin(stdinW)
		s.watchExit(task, spec.ID, capture)
		s.bus.PublishStatus(schema.StatusEvent{ServerID: spec.ID, Status: schema.StatusStarting})
		log.Info("server task started", "task", task.ID())
		return nil
	}

	status, err := task.Status(ctx)
	if err != nil {
		return err
	}
	if status.Status != containerd.Running {
		if err := task.Start(ctx); err != nil {
			log.Warn("server task start failed", "err", err)
			return err
		}
		s.bus.PublishStatus(schema.StatusEvent{ServerID: spec.ID, Status: schema.StatusStarting})
		log.Info("server task started", "task", task.ID())
	}
	if _, err := s.attach(ctx, spec.ID); err != nil {
		log.Warn("server attach failed", "err", err)
	}
	return nil
}

// StopServer signals the task and deletes it once it exits. Missing container
// or task counts as already stopped.
func (s *Supervisor) StopServer(ctx context.Context, serverID schema.ServerID) error {
	log := pslog.Ctx(ctx).With("runtime", "containerd", "server", serverID)
	log.Info("server stop requested")
	ctx = namespaces.WithNamespace(ctx, s.namespace)
	container, err := s.client.LoadContainer(ctx, string(serverID))
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil
		}
		return err
	}
	task, err := container.Task(ctx, nil)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil
		}
		return err
	}
	s.bus.PublishStatus(schema.StatusEvent{ServerID: serverID, Status: schema.StatusStopping})
	_ = task.Kill(ctx, syscall.SIGTERM)
	if waitCh, err := task.Wait(ctx); err == nil {
		select {
		case <-waitCh:
		case <-ctx.Done():
		}
	}
	_, _ = task.Delete(ctx)
	log.Info("server stop ok")
	return nil
}

// RemoveServer deletes the container and its snapshot.
func (s *Supervisor) RemoveServer(ctx context.Context, serverID schema.ServerID) error {
	log := pslog.Ctx(ctx).With("runtime", "containerd", "server", serverID)
	log.Info("server remove requested")
	ctx = namespaces.WithNamespace(ctx, s.namespace)
	container, err := s.client.LoadContainer(ctx, string(serverID))
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil
		}
		return err
	}
	err = container.Delete(ctx, containerd.WithSnapshotCleanup)
	s.mu.Lock()
	if capture, ok := s.captures[serverID]; ok {
		delete(s.captures, serverID)
		s.mu.Unlock()
		capture.release()
	} else {
		s.mu.Unlock()
	}
	if err != nil {
		log.Warn("server remove failed", "err", err)
		return err
	}
	log.Info("server remove ok")
	return nil
}

// TagImage makes the target of ref available under alias, pulling ref first
// when needed. Game templates are tagged per game type.
func (s *Supervisor) TagImage(ctx context.Context, ref, alias string) error {
	if strings.TrimSpace(alias) == "" {
		return errors.New("image alias is required")
	}
	ctx = namespaces.WithNamespace(ctx, s.namespace)
	image, err := s.ensureImage(ctx, ref)
	if err != nil {
		return err
	}
	return s.tagImage(ctx, alias, image.Target())
}

func (s *Supervisor) tagImage(ctx context.Context, name string, target ocispec.Descriptor) error {
	if _, err := s.client.GetImage(ctx, name); err == nil {
		_, err = s.client.ImageService().Update(ctx, images.Image{Name: name, Target: target}, "target")
		return err
	} else if !errdefs.IsNotFound(err) {
		return err
	}
	_, err := s.client.ImageService().Create(ctx, images.Image{Name: name, Target: target})
	return err
}

func (s *Supervisor) ensureImage(ctx context.Context, ref string) (containerd.Image, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, errors.New("image is required")
	}
	log := pslog.Ctx(ctx).With("runtime", "containerd", "image", ref)
	image, err := s.client.GetImage(ctx, ref)
	if err == nil {
		return image, nil
	}
	if !errdefs.IsNotFound(err) {
		return nil, err
	}
	pullCtx, cancel := context.WithTimeout(ctx, defaultPullTimeout)
	defer cancel()
	log.Info("image pull start")
	if pulled, err := s.pullWithTransfer(pullCtx, ref); err == nil {
		log.Info("image pull ok", "method", "transfer")
		return pulled, nil
	} else {
		log.Warn("transfer pull failed", "err", err)
	}
	image, err = s.client.Pull(pullCtx, ref, containerd.WithPullUnpack)
	if err != nil {
		log.Warn("image pull failed", "err", err)
		return nil, err
	}
	log.Info("image pull ok", "method", "pull")
	return image, nil
}

func (s *Supervisor) pullWithTransfer(ctx context.Context, ref string) (containerd.Image, error) {
	platform := platforms.DefaultSpec()
	store := transferimage.NewStore(ref, transferimage.WithUnpack(platform, ""))
	reg, err := registry.NewOCIRegistry(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.client.Transfer(ctx, reg, store); err != nil {
		return nil, err
	}
	return s.client.GetImage(ctx, ref)
}

func serverSpecOpts(image containerd.Image, spec ServerSpec) []oci.SpecOpts {
	opts := []oci.SpecOpts{oci.WithImageConfig(image)}
	if len(spec.Env) > 0 {
		opts = append(opts, oci.WithEnv(flattenEnv(spec.Env)))
	}
	if len(spec.Command) > 0 {
		opts = append(opts, oci.WithProcessArgs(spec.Command...))
	}
	mounts := spec.Mounts
	if strings.TrimSpace(spec.DataDir) != "" {
		mounts = append(mounts, Mount{Source: spec.DataDir, Target: "/data"})
	}
	if len(mounts) > 0 {
		opts = append(opts, oci.WithMounts(mapMounts(mounts)))
	}
	return opts
}

func flattenEnv(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	return out
}

func mapMounts(mounts []Mount) []specs.Mount {
	out := make([]specs.Mount, 0, len(mounts))
	for _, mount := range mounts {
		opts := []string{"rbind"}
		if mount.ReadOnly {
			opts = append(opts, "ro")
		} else {
			opts = append(opts, "rw")
		}
		out = append(out, specs.Mount{
			Type:        "bind",
			Source:      mount.Source,
			Destination: mount.Target,
			Options:     opts,
		})
	}
	return out
}
